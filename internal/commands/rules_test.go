package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_List(t *testing.T) {
	dir := newDataDir(t, "ledger.csv")
	out, err := runTally(t, "rules", "list", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Food: swiggy, zomato")
	assert.Contains(t, out, "UPI Payment (checked last): upi, transfer to, paid to")
}

func TestRules_Add(t *testing.T) {
	dir := newDataDir(t, "ledger.csv")

	out, err := runTally(t, "rules", "add", "Food", "Chai Point", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, `Added "chai point" to Food`)

	out, err = runTally(t, "rules", "list", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "chai point")
}

func TestRules_AddDuplicate(t *testing.T) {
	dir := newDataDir(t, "ledger.csv")

	out, err := runTally(t, "rules", "add", "Shopping", "SWIGGY", "--root", dir)
	require.Error(t, err)
	assert.Contains(t, out, `keyword "swiggy" already belongs to Food`)
}

func TestRules_ApplyRecategorizesLedger(t *testing.T) {
	dir := newDataDir(t, "ledger.csv", "phonepe.txt")
	_, err := runTally(t, "import", "--root", dir)
	require.NoError(t, err)

	ledgerPath := filepath.Join(dir, "ledger.csv")
	data, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Paid to Ramesh Kumar,200.00,UPI Payment,")

	out, err := runTally(t, "rules", "add", "Rent", "ramesh kumar", "--root", dir)
	require.NoError(t, err, out)

	out, err = runTally(t, "rules", "apply", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Re-categorized ledger.csv: 1 of 2 rows changed.")

	data, err = os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Paid to Ramesh Kumar,200.00,Rent,")
	assert.Contains(t, string(data), "Paid to Big Basket,1250.00,Grocery,")

	out, err = runTally(t, "rules", "apply", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Re-categorized ledger.csv: 0 of 2 rows changed.")
}

func TestRules_ApplyLegacyLedger(t *testing.T) {
	dir := newDataDir(t, "ledger.csv")
	stale := "Date,Description,Amount,Category,Source\n" +
		"2025-11-13,UBER TRIP,320.50,Others,Credit Card\n" +
		"2025-11-14,ZOMATO ORDER,410.00,Others,Credit Card\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger.csv"), []byte(stale), 0o644))

	out, err := runTally(t, "rules", "apply", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Re-categorized ledger.csv: 2 of 2 rows changed.")

	data, err := os.ReadFile(filepath.Join(dir, "ledger.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date,Transaction made at,Amount,Category,Source,Hash")
	assert.Contains(t, string(data), "UBER TRIP,320.50,Travel,Credit Card,")
	assert.Contains(t, string(data), "ZOMATO ORDER,410.00,Food,Credit Card,")
}

func TestRules_ApplyEmptyLedger(t *testing.T) {
	dir := newDataDir(t, "ledger.csv")
	out, err := runTally(t, "rules", "apply", "--root", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No rows in ledger.csv.")
}
