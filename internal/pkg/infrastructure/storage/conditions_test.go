package storage

import (
	"testing"

	"github.com/matryer/is"
)

func newCondition(conditions ...ConditionFunc) *Condition {
	c := &Condition{}
	for _, fn := range conditions {
		c = fn(c)
	}
	return c
}

func TestEmptyConditionHasNoWhereClause(t *testing.T) {
	is := is.New(t)

	c := newCondition()

	is.Equal(c.Where(), "")
	is.Equal(len(c.NamedArgs()), 0)
	is.Equal(c.OffsetLimit(), "")
}

func TestConditionCombinesClauses(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithDeviceID("vibe-0001"), WithStatus([]string{"active"}))

	is.Equal(c.Where(), "WHERE device_id = @device_id AND status = ANY(@status)")

	args := c.NamedArgs()
	is.Equal(args["device_id"], "vibe-0001")
	is.Equal(args["status"], []string{"active"})
}

func TestConditionAlertID(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithAlertID("a-1"))

	is.Equal(c.Where(), "WHERE alert_id = @alert_id")
	is.Equal(c.NamedArgs()["alert_id"], "a-1")
}

func TestConditionOpenOnly(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithOpenOnly())

	is.Equal(c.Where(), "WHERE status IN ('active', 'acknowledged')")
	is.Equal(len(c.NamedArgs()), 0)
}

func TestConditionAlertTypes(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithAlertTypes([]string{"vibration_warning", "temp_critical"}))

	is.Equal(c.Where(), "WHERE alert_type = ANY(@alert_types)")
}

func TestConditionOffsetLimit(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithOffset(20), WithLimit(10))

	is.Equal(c.OffsetLimit(), "OFFSET 20 LIMIT 10 ")
	is.Equal(c.Offset(), 20)
	is.Equal(c.Limit(), 10)
}

func TestConditionSortByWhitelist(t *testing.T) {
	is := is.New(t)

	c := newCondition(WithSortBy("severity"), WithSortDesc(true))
	is.Equal(c.SortBy(), "severity")
	is.Equal(c.SortOrder(), "DESC")

	// anything outside the whitelist is ignored
	c = newCondition(WithSortBy("1; DROP TABLE alerts"))
	is.Equal(c.SortBy(), "")
	is.Equal(c.SortOrder(), "ASC")
}
