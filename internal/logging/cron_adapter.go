// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package logging

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CronAdapter implements cron.Logger on zerolog. cron's Info messages are
// scheduler chatter and are logged at debug level.
type CronAdapter struct {
	logger zerolog.Logger
}

// NewCronAdapter wraps the global logger tagged with component.
func NewCronAdapter(component string) *CronAdapter {
	return &CronAdapter{logger: WithComponent(component)}
}

var _ cron.Logger = (*CronAdapter)(nil)

// Info implements cron.Logger.
func (a *CronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(pairs(keysAndValues)).Msg(msg)
}

// Error implements cron.Logger.
func (a *CronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(pairs(keysAndValues)).Msg(msg)
}

// pairs turns cron's alternating key/value list into a field map.
func pairs(kv []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
