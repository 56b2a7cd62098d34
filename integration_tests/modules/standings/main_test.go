package standingsintegration

import (
	"os"
	"testing"

	"github.com/Black-And-White-Club/tabroom/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.ShutdownSharedEnv()
	os.Exit(code)
}
