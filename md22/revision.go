package md22

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// RevisionError is returned by CheckRevision when the board firmware does not
// satisfy the requested constraint.
type RevisionError struct {
	Address    byte
	Revision   byte
	Constraint string
}

func (err RevisionError) Error() string {
	return fmt.Sprintf("unable to use md22 0x%02x: received revision %d - require %s", err.Address, err.Revision, err.Constraint)
}

// RevisionVersion expresses a raw revision byte as a semantic version so it
// can be checked against constraints such as ">= 2".
func RevisionVersion(rev byte) *semver.Version {
	v, _ := semver.NewVersion(fmt.Sprintf("%d.0.0", rev))
	return v
}

// CheckRevision reads the software revision and verifies it satisfies the
// constraint. An empty constraint accepts any revision.
func (m *MD22) CheckRevision(constraint string) (rev byte, err error) {
	rev, err = m.SoftwareRevision()
	if err != nil || constraint == "" {
		return
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return
	}

	if !c.Check(RevisionVersion(rev)) {
		err = RevisionError{Address: m.address, Revision: rev, Constraint: constraint}
	}

	return
}
