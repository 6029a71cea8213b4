// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/vlcb-node/internal/config"
	wmodbus "github.com/tamzrod/vlcb-node/internal/writer/modbus"
)

// BuildStatusPlan converts the status config into a plan.
// A nil config means the mirror is disabled and yields a nil plan.
// Assumes config has already passed validation.
func BuildStatusPlan(c *cfg.StatusConfig) (*StatusPlan, error) {
	if c == nil {
		return nil, nil
	}
	if c.UnitID == nil {
		return nil, errors.New("writer: status unit_id required")
	}

	return &StatusPlan{
		Endpoint: c.Endpoint,
		UnitID:   *c.UnitID,
		BaseSlot: c.BaseSlot,
	}, nil
}

// BuildEndpointClient connects the TCP client for the plan's endpoint.
func BuildEndpointClient(plan *StatusPlan, timeout time.Duration) (*wmodbus.EndpointClient, func() error, error) {
	if plan == nil {
		return nil, nil, errors.New("writer: status plan required")
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
