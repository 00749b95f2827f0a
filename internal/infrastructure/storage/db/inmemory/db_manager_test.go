package inmemory_test

import (
	"testing"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/dbtest"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
)

func TestRepoManager(t *testing.T) {
	dbtest.TestRepoManager(t, func() emulator.RepoManager {
		return inmemory.NewRepoManager()
	})
}
