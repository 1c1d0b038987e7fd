// Package repository provides a generic, validated, cache-fronted data
// access layer for a single entity type.
//
// # Overview
//
// A Repository[T] sits between service code and a Manager[T] (the datastore
// layer) and adds three things on top of plain CRUD:
//
//   - **Input validation**: ids, field maps, record lists, and pagination
//     parameters are validated before any manager call; failures surface as
//     ValidationError without touching the datastore.
//   - **Best-effort caching**: reads go through an advisory cache keyed per
//     entity type; writes invalidate the affected keys. A failing or absent
//     cache store is always equivalent to a miss and never changes results.
//   - **Log hygiene**: every caller-supplied value that reaches a log field
//     passes through Sanitize, which redacts sensitive keys and truncates
//     long strings.
//
// # Basic Usage
//
// Construct a repository from an entity-type descriptor and a manager:
//
//	repo, err := repository.NewWithManager(model.QuestionnaireMeta, mgr,
//		repository.WithCache[*model.Questionnaire](store),
//	)
//	if err != nil {
//		return err
//	}
//
//	q, found, err := repo.GetByID(ctx, 42)
//	page, err := repo.Paginate(ctx, 1, 20, map[string]any{"questionnaire_scope": "public"})
//
// # Cache Key Layout
//
// Keys are a pure function of the entity metadata and the operation inputs:
//
//	{namespace}.{entity}.{id}                  single entity
//	{namespace}.{entity}.all                   unbounded get-all
//	{namespace}.{entity}.all.limit_N.offset_M  ranged get-all
//	{namespace}.{entity}.count_<filters>       count, filters sorted by key
//	{namespace}.{entity}.paginated             reserved family base key
//
// Writes delete the entity's own key plus the collection families (all,
// count, paginated). Parameterised family members populated by this instance
// are tracked in a key registry and deleted alongside the base keys.
//
// # Not-Found Semantics
//
// Absence is not an error. GetByID, Update, and Delete report it through
// their bool result; only validation failures and manager/datastore faults
// produce errors. Manager faults are logged once with sanitized context and
// wrapped into OperationError.
//
// # Concurrency
//
// A Repository holds no cross-call mutable state beyond the memoized manager
// reference, which is safe to recompute under a race. Calls are synchronous
// and run to completion; concurrent writers to the same entity race at the
// datastore, and cache invalidation after a commit is best-effort, so a
// reader can observe a bounded staleness window between commit and
// invalidation.
//
// # See Also
//
// For cache store backends and configuration, see the cache package. For
// the bun-backed Manager implementation, see internal/database.
package repository
