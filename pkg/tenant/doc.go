// Package tenant provides the tenant identity carried through HTTP plumbing
// and logging.
//
// Quota accounting APIs always take the tenant ID as an explicit parameter;
// the context helpers here exist only so that HTTP middleware can stash the
// resolved tenant for handlers and so the logger can tag records with
// tenant_id via LoggerExtractor.
//
//	log := logger.New(
//	    logger.WithProduction("quota-service"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//
// Provider abstracts the tenant lookup so HTTP modules can resolve a tenant
// from a subdomain or header without depending on a concrete store.
package tenant
