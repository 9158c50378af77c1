package onboard

import (
	"time"

	"github.com/CodedInternet/gomd22/md22"
	"github.com/asdine/storm"
)

// UnitState is the last value commanded to each register of a unit.
type UnitState struct {
	Name         string             `storm:"id" json:"name"`
	Address      byte               `json:"address"`
	Mode         md22.OperatingMode `json:"mode"`
	Speed        uint8              `json:"speed"`
	Turn         uint8              `json:"turn"`
	Acceleration uint8              `json:"acceleration"`
	Revision     uint8              `json:"revision"`
	Updated      time.Time          `json:"updated"`
}

// Journal persists UnitState records so the last commands survive a restart
// of the controller process.
type Journal struct {
	db *storm.DB
}

func NewJournal(db *storm.DB) (j *Journal, err error) {
	if err = db.Init(&UnitState{}); err != nil {
		return
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(state UnitState) error {
	return j.db.Save(&state)
}

// Get returns the recorded state for name, or storm.ErrNotFound.
func (j *Journal) Get(name string) (state UnitState, err error) {
	err = j.db.One("Name", name, &state)
	return
}

func (j *Journal) All() (states []UnitState, err error) {
	err = j.db.All(&states)
	return
}
