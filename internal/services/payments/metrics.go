package payments

import "github.com/VictoriaMetrics/metrics"

var (
	paymentsCreatedTotal = metrics.NewCounter(`payments_created_total`)

	callbacksVerifiedSuccess = metrics.NewCounter(`payment_callbacks_verified_total{status="success"}`)
	callbacksVerifiedFailed  = metrics.NewCounter(`payment_callbacks_verified_total{status="failed"}`)
	callbacksRejectedTotal   = metrics.NewCounter(`payment_callbacks_rejected_total`)

	membershipUpgradesTotal        = metrics.NewCounter(`membership_upgrades_total`)
	membershipUpgradeFailuresTotal = metrics.NewCounter(`membership_upgrade_failures_total`)
)
