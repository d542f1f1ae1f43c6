// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var launchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lti_launches_total",
	Help: "Number of launches, by result ('ok' or the kind of error)",
}, []string{"result"})

var sessionVisitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lti_sessions_visits_total",
	Help: "Number of visits with an established session",
})
