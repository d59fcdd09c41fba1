// Package metrics exposes service telemetry in the Prometheus format.
//
// Instruments are created through the OpenTelemetry metric API and exported
// by the OpenTelemetry Prometheus exporter into a private registry, which is
// served by Handler. Two sources feed it: the Stripe client, through the
// observer returned by StripeObserver, and the subscription service, through
// RecordWebhook.
//
//	rec, err := metrics.New()
//	if err != nil {
//		return err
//	}
//	defer rec.Shutdown(ctx)
//
//	client, err := stripe.NewClient(cfg, stripe.WithObserver(rec.StripeObserver()))
//	svc := subscription.NewService(provider, store,
//		subscription.WithEventRecorder(rec.RecordWebhook),
//	)
//	router.Handle("/metrics", rec.Handler())
package metrics
