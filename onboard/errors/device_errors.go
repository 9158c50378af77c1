package errors

import "fmt"

type UnitNameError struct {
	Name string
}

func (err UnitNameError) Error() string {
	return fmt.Sprintf("no such unit %s", err.Name)
}

type BusNameError struct {
	Name string
	Unit string
}

func (err BusNameError) Error() string {
	if len(err.Unit) == 0 {
		err.Unit = "UNKNOWN"
	}

	return fmt.Sprintf("unit %s refers to undefined bus %s", err.Unit, err.Name)
}

// ConfigValueError reports a config entry that could not be interpreted.
type ConfigValueError struct {
	Unit  string
	Field string
	Err   error
}

func (err ConfigValueError) Error() string {
	return fmt.Sprintf("unit %s: invalid %s: %v", err.Unit, err.Field, err.Err)
}
