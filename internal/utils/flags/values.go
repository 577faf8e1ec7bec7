// Package flags provides helpers for reading standardized flag values from Cobra commands.
package flags

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const commandMissingMessageConstant = "command not provided"

// ErrCommandMissing indicates a nil command was supplied.
var ErrCommandMissing = errors.New(commandMissingMessageConstant)

// BoolFlag returns the named boolean flag value and whether the operator set it.
func BoolFlag(command *cobra.Command, flagName string) (bool, bool, error) {
	flagSet, flagError := lookupFlagSet(command, flagName)
	if flagError != nil {
		return false, false, flagError
	}

	value, valueError := flagSet.GetBool(flagName)
	if valueError != nil {
		return false, false, valueError
	}
	return value, flagSet.Changed(flagName), nil
}

// StringFlag returns the named string flag value and whether the operator set it.
func StringFlag(command *cobra.Command, flagName string) (string, bool, error) {
	flagSet, flagError := lookupFlagSet(command, flagName)
	if flagError != nil {
		return "", false, flagError
	}

	value, valueError := flagSet.GetString(flagName)
	if valueError != nil {
		return "", false, valueError
	}
	return value, flagSet.Changed(flagName), nil
}

func lookupFlagSet(command *cobra.Command, flagName string) (*pflag.FlagSet, error) {
	if command == nil {
		return nil, ErrCommandMissing
	}

	localFlagSet := command.Flags()
	if localFlagSet.Lookup(flagName) != nil {
		return localFlagSet, nil
	}

	inheritedFlagSet := command.InheritedFlags()
	if inheritedFlagSet.Lookup(flagName) != nil {
		return inheritedFlagSet, nil
	}

	return localFlagSet, nil
}
