package commands

import (
	"fmt"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
	"github.com/petal-labs/giga/transports/curl"
	"github.com/petal-labs/giga/transports/httpapi"
)

type transportConstructor func(cfg transports.Config) core.Transport

func defaultTransportFactory() TransportFactory {
	constructors := map[string]transportConstructor{
		httpapi.ID: func(cfg transports.Config) core.Transport {
			return httpapi.New(cfg)
		},
		curl.ID: func(cfg transports.Config) core.Transport {
			return curl.New(cfg)
		},
	}

	return func(name string, cfg transports.Config) (core.Transport, error) {
		if ctor, ok := constructors[name]; ok {
			return ctor(cfg), nil
		}

		// Fall back to registry for externally-registered transports.
		if transports.IsRegistered(name) {
			return transports.Create(name, cfg)
		}

		return nil, fmt.Errorf("unsupported transport: %s (available: %v)", name, transports.List())
	}
}
