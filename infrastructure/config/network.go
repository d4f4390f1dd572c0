package config

import (
	"fmt"
	"os"

	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet bool `long:"testnet" description:"Use the test network"`
	Devnet  bool `long:"devnet" description:"Use the development test network"`

	ActiveNetParams *dposconfig.Params
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	networkFlags.ActiveNetParams = &dposconfig.MainnetParams
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		networkFlags.ActiveNetParams = &dposconfig.TestnetParams
	}
	if networkFlags.Devnet {
		numNets++
		networkFlags.ActiveNetParams = &dposconfig.DevnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, devnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}

	return nil
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dposconfig.Params {
	return networkFlags.ActiveNetParams
}
