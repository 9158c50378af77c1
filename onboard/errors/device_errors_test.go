package errors

import (
	"errors"
	. "github.com/smartystreets/goconvey/convey"
	"testing"
)

func TestErrors(t *testing.T) {
	Convey("errors describe the offending item", t, func() {
		So(UnitNameError{Name: "left"}.Error(), ShouldEqual, "no such unit left")
		So(BusNameError{Name: "i2c9"}.Error(), ShouldEqual, "unit UNKNOWN refers to undefined bus i2c9")
		So(ConfigValueError{Unit: "left", Field: "mode", Err: errors.New("bad")}.Error(),
			ShouldEqual, "unit left: invalid mode: bad")
	})
}
