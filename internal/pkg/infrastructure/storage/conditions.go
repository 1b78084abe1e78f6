package storage

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionFunc func(*Condition) *Condition

type Condition struct {
	AlertID    string
	DeviceID   string
	AlertTypes []string
	Status     []string
	OpenOnly   bool

	sortBy    string
	sortOrder string

	offset *int
	limit  *int
}

func (c Condition) SortBy() string {
	return c.sortBy
}

func (c Condition) SortOrder() string {
	if c.sortOrder == "" {
		return "ASC"
	}
	return c.sortOrder
}

func (c Condition) Offset() int {
	if c.offset != nil {
		return *c.offset
	}
	return 0
}

func (c Condition) Limit() int {
	if c.limit != nil {
		return *c.limit
	}
	return 0
}

func (c Condition) OffsetLimit() string {
	offsetLimit := ""

	if c.offset != nil {
		offsetLimit += fmt.Sprintf("OFFSET %d ", *c.offset)
	}
	if c.limit != nil {
		offsetLimit += fmt.Sprintf("LIMIT %d ", *c.limit)
	}

	return offsetLimit
}

func (c Condition) NamedArgs() pgx.NamedArgs {
	args := pgx.NamedArgs{}

	if c.AlertID != "" {
		args["alert_id"] = c.AlertID
	}
	if c.DeviceID != "" {
		args["device_id"] = c.DeviceID
	}
	if len(c.AlertTypes) > 0 {
		args["alert_types"] = c.AlertTypes
	}
	if len(c.Status) > 0 {
		args["status"] = c.Status
	}

	return args
}

func (c Condition) Where() string {
	where := []string{}

	if c.AlertID != "" {
		where = append(where, "alert_id = @alert_id")
	}

	if c.DeviceID != "" {
		where = append(where, "device_id = @device_id")
	}

	if len(c.AlertTypes) > 0 {
		where = append(where, "alert_type = ANY(@alert_types)")
	}

	if len(c.Status) > 0 {
		where = append(where, "status = ANY(@status)")
	}

	if c.OpenOnly {
		where = append(where, "status IN ('active', 'acknowledged')")
	}

	if len(where) == 0 {
		return ""
	}

	return "WHERE " + strings.Join(where, " AND ")
}

func WithAlertID(alertID string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.AlertID = alertID
		return c
	}
}

func WithDeviceID(deviceID string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.DeviceID = deviceID
		return c
	}
}

func WithAlertTypes(alertTypes []string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.AlertTypes = alertTypes
		return c
	}
}

func WithStatus(status []string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Status = status
		return c
	}
}

func WithOpenOnly() ConditionFunc {
	return func(c *Condition) *Condition {
		c.OpenOnly = true
		return c
	}
}

func WithOffset(offset int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.offset = &offset
		return c
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.limit = &limit
		return c
	}
}

func WithSortBy(sortBy string) ConditionFunc {
	return func(c *Condition) *Condition {
		switch strings.ToLower(sortBy) {
		case "created_at":
			c.sortBy = "created_at"
		case "device_id":
			c.sortBy = "device_id"
		case "severity":
			c.sortBy = "severity"
		case "status":
			c.sortBy = "status"
		}
		return c
	}
}

func WithSortDesc(desc bool) ConditionFunc {
	return func(c *Condition) *Condition {
		if desc {
			c.sortOrder = "DESC"
		} else {
			c.sortOrder = "ASC"
		}
		return c
	}
}
