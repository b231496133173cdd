// Package resilience retries operations against infrastructure that may not
// be reachable yet, such as the store at startup.
//
//	db, err := resilience.Retry(ctx, resilience.Policy{Attempts: 3}, func(ctx context.Context) (*gorm.DB, error) {
//	    return gorm.Open(dialector, gormCfg)
//	})
package resilience
