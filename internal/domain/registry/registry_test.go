package registry_test

import (
	"testing"

	registry "github.com/okian/lodestar/internal/domain/registry"
	signal "github.com/okian/lodestar/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistryLookup(t *testing.T) {
	Convey("Given a registry loaded with known signals", t, func() {
		reg := registry.New(map[string]signal.Kind{
			"engineTemp": signal.Analog,
			"bilgeAlarm": signal.Digital,
		})

		Convey("When looking up a registered analog signal", func() {
			kind, ok := reg.Lookup("engineTemp")

			Convey("Then it should return the analog kind", func() {
				So(ok, ShouldBeTrue)
				So(kind, ShouldEqual, signal.Analog)
			})
		})

		Convey("When looking up a registered digital signal", func() {
			kind, ok := reg.Lookup("bilgeAlarm")

			Convey("Then it should return the digital kind", func() {
				So(ok, ShouldBeTrue)
				So(kind, ShouldEqual, signal.Digital)
			})
		})

		Convey("When looking up an unregistered name", func() {
			_, ok := reg.Lookup("unknownSig")

			Convey("Then the lookup should miss without error", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Then the size should match the loaded map", func() {
			So(reg.Size(), ShouldEqual, 2)
		})
	})
}

func TestRegistryIsolation(t *testing.T) {
	Convey("Given a registry built from a caller-owned map", t, func() {
		source := map[string]signal.Kind{"rudderAngle": signal.Analog}
		reg := registry.New(source)

		Convey("When the caller mutates the source map afterwards", func() {
			source["injected"] = signal.Digital
			delete(source, "rudderAngle")

			Convey("Then the registry should be unaffected", func() {
				_, ok := reg.Lookup("injected")
				So(ok, ShouldBeFalse)

				kind, ok := reg.Lookup("rudderAngle")
				So(ok, ShouldBeTrue)
				So(kind, ShouldEqual, signal.Analog)
			})
		})
	})
}
