package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(rentalTransitions.WithLabelValues("admit"))
	IncRentalTransition("admit")
	assert.Equal(t, before+1, testutil.ToFloat64(rentalTransitions.WithLabelValues("admit")))

	beforeHTTP := testutil.ToFloat64(httpRequests.WithLabelValues("rent.create", "201"))
	ObserveHTTP("rent.create", 201, 15*time.Millisecond)
	assert.Equal(t, beforeHTTP+1, testutil.ToFloat64(httpRequests.WithLabelValues("rent.create", "201")))

	beforeEmail := testutil.ToFloat64(emailJobs.WithLabelValues("sent"))
	IncEmailJob("sent")
	assert.Equal(t, beforeEmail+1, testutil.ToFloat64(emailJobs.WithLabelValues("sent")))
}
