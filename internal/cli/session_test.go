// internal/cli/session_test.go
package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailflow/pos-be/internal/adapters/memory"
	"github.com/retailflow/pos-be/internal/cli"
	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/test/helpers"
)

func newTestTerminal(t *testing.T, script string) (*cli.Terminal, *bytes.Buffer) {
	t.Helper()

	ledger, err := services.NewLedger(helpers.CreateTestCatalog(), helpers.TestLogger())
	require.NoError(t, err)

	engine := services.NewEngine(ledger, memory.NewReceiptStore(), nil, nil, helpers.TestLogger())
	auth := services.NewAuthenticator(map[string]string{"cashier1": "changeme"}, 3, helpers.TestLogger())

	var out bytes.Buffer
	term := cli.NewTerminal(engine, ledger, auth, nil, "exports",
		strings.NewReader(script), &out, helpers.TestLogger())
	return term, &out
}

func TestTerminal_SaleWorkflow(t *testing.T) {
	script := strings.Join([]string{
		"cashier1",
		"changeme",
		"2", // new sale
		"add 72800B",
		"checkout",
		"3.55",
		"0", // exit
	}, "\n") + "\n"

	term, out := newTestTerminal(t, script)
	require.NoError(t, term.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Welcome, cashier1.")
	assert.Contains(t, output, "Total due: 2.55")
	assert.Contains(t, output, "RECEIPT #1")
	assert.Contains(t, output, "CHANGE:")
	assert.Contains(t, output, "1.00")
	assert.Contains(t, output, "Goodbye, cashier1.")
}

func TestTerminal_RejectsShortPayment(t *testing.T) {
	script := strings.Join([]string{
		"cashier1",
		"changeme",
		"2",
		"add 72800B",
		"checkout",
		"1.00",
		"abort",
		"0",
	}, "\n") + "\n"

	term, out := newTestTerminal(t, script)
	require.NoError(t, term.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Cash tendered does not cover the total.")
	assert.Contains(t, output, "Sale abandoned.")
	assert.NotContains(t, output, "RECEIPT #")
}

func TestTerminal_OversellRejected(t *testing.T) {
	script := strings.Join([]string{
		"cashier1",
		"changeme",
		"2",
		"add 72800B 5",
		"abort",
		"0",
	}, "\n") + "\n"

	term, out := newTestTerminal(t, script)
	require.NoError(t, term.Run(context.Background()))

	assert.Contains(t, out.String(), "Not enough stock on hand.")
}

func TestTerminal_LockoutAfterThreeFailures(t *testing.T) {
	script := strings.Join([]string{
		"cashier1", "wrong",
		"cashier1", "wrong",
		"cashier1", "wrong",
	}, "\n") + "\n"

	term, out := newTestTerminal(t, script)
	err := term.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrLockedOut)
	assert.Contains(t, out.String(), "Terminal locked.")
}
