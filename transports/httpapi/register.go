package httpapi

import (
	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

func init() {
	transports.Register(ID, func(cfg transports.Config) core.Transport {
		return New(cfg)
	})
}
