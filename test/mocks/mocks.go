// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/ledger.go -destination=ledger_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/receipt_repository.go -destination=receipt_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/task_enqueuer.go -destination=task_enqueuer_mock.go -package=mocks
