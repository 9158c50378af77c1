package main

import (
	"errors"
	"net/http"

	"github.com/CodedInternet/gomd22/md22"
	"github.com/go-chi/chi"
	"github.com/go-chi/render"
)

// UnitPayload updates a unit. Every field is optional; raw speed and turn
// values cannot be combined with throttle and steer.
type UnitPayload struct {
	Mode         *string  `json:"mode,omitempty"`
	Acceleration *uint8   `json:"acceleration,omitempty"`
	Speed        *uint8   `json:"speed,omitempty"`
	Turn         *uint8   `json:"turn,omitempty"`
	Throttle     *float64 `json:"throttle,omitempty"`
	Steer        *float64 `json:"steer,omitempty"`

	mode md22.OperatingMode
}

func (p *UnitPayload) Bind(r *http.Request) (err error) {
	drive := p.Throttle != nil || p.Steer != nil
	if drive && (p.Speed != nil || p.Turn != nil) {
		return errors.New("speed and turn cannot be combined with throttle and steer")
	}

	if p.Mode != nil {
		p.mode, err = md22.ParseOperatingMode(*p.Mode)
	}
	return
}

type RevisionPayload struct {
	Name     string `json:"name"`
	Revision uint8  `json:"revision"`
}

func ListUnits(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Device.States())
}

func GetUnit(w http.ResponseWriter, r *http.Request) {
	state, err := Device.State(chi.URLParam(r, "name"))
	if err != nil {
		render.Render(w, r, errDevice(err))
		return
	}

	render.JSON(w, r, state)
}

// UpdateUnit applies mode, acceleration, then speed/turn or throttle/steer
// in that order, stopping at the first failure.
func UpdateUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data := &UnitPayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	steps := []func() error{}
	if data.Mode != nil {
		steps = append(steps, func() error { return Device.SetMode(name, data.mode) })
	}
	if data.Acceleration != nil {
		steps = append(steps, func() error { return Device.SetAcceleration(name, *data.Acceleration) })
	}
	if data.Speed != nil {
		steps = append(steps, func() error { return Device.SetSpeed(name, *data.Speed) })
	}
	if data.Turn != nil {
		steps = append(steps, func() error { return Device.SetTurn(name, *data.Turn) })
	}
	if data.Throttle != nil || data.Steer != nil {
		var throttle, steer float64
		if data.Throttle != nil {
			throttle = *data.Throttle
		}
		if data.Steer != nil {
			steer = *data.Steer
		}
		steps = append(steps, func() error { return Device.Drive(name, throttle, steer) })
	}

	for _, step := range steps {
		if err := step(); err != nil {
			render.Render(w, r, errDevice(err))
			return
		}
	}

	GetUnit(w, r)
}

func StopUnit(w http.ResponseWriter, r *http.Request) {
	if err := Device.Stop(chi.URLParam(r, "name")); err != nil {
		render.Render(w, r, errDevice(err))
		return
	}

	GetUnit(w, r)
}

func StopAll(w http.ResponseWriter, r *http.Request) {
	if err := Device.StopAll(); err != nil {
		render.Render(w, r, ErrBus(err))
		return
	}

	render.JSON(w, r, Device.States())
}

func GetRevision(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rev, err := Device.Revision(name)
	if err != nil {
		render.Render(w, r, errDevice(err))
		return
	}

	render.JSON(w, r, RevisionPayload{Name: name, Revision: rev})
}
