package loopback

import "github.com/yndnr/fabmesh-go/internal/fabric/conf"

// Registration-cache option names, shared by the table and its readers.
const (
	optMemPrio    = "RCACHE_MEM_PRIO"
	optOverhead   = "RCACHE_OVERHEAD"
	optAddrAlign  = "RCACHE_ADDR_ALIGN"
	optRegModes   = "REG_MODES"
	optAllocName  = "ALLOC_NAME"
	optRcacheable = "RCACHE"
)

var regModeBits = map[string]uint64{
	"read":   1,
	"write":  2,
	"atomic": 4,
}

func mdConfigTable() []conf.Field {
	return []conf.Field{
		{
			Name:    optMemPrio,
			Default: "1000",
			Doc:     "Registration cache region priority",
			Type:    conf.TypeUint,
		},
		{
			Name:    optOverhead,
			Default: "90ns",
			Doc:     "Registration cache lookup overhead estimate",
			Type:    conf.TypeTime,
		},
		{
			Name:    optAddrAlign,
			Default: "16",
			Doc:     "Synthetic base address alignment, power of two",
			Type:    conf.TypeUint,
		},
		{
			Name:    optRegModes,
			Default: "read,write",
			Doc:     "Access modes granted to registrations by default",
			Type:    conf.TypeBits,
			Bits:    regModeBits,
		},
		{
			Name:    optAllocName,
			Default: "loopback",
			Doc:     "Default allocation name tag",
			Type:    conf.TypeString,
		},
		{
			Name:    optRcacheable,
			Default: "yes",
			Doc:     "Enable the registration cache",
			Type:    conf.TypeBool,
		},
	}
}

func ifaceConfigTable() []conf.Field {
	return []conf.Field{
		{
			Name:    "SEG_SIZE",
			Default: "8K",
			Doc:     "Maximum message segment size",
			Type:    conf.TypeUint,
		},
		{
			Name:    "POLL_INTERVAL",
			Default: "10us",
			Doc:     "Progress poll interval",
			Type:    conf.TypeTime,
		},
	}
}
