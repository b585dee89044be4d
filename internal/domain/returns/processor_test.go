package returns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/documents/commercial"
	"wireline/internal/domain/ledger"
)

func ratePtr(s string) *types.Rate {
	r := types.MustRate(s)
	return &r
}

func returnLine(net float64, rate string) calc.LineInput {
	return calc.LineInput{
		ItemID:      id.New(),
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(net),
		Rate:        ratePtr(rate),
	}
}

func TestCompute_SalesReturnWithDeduction(t *testing.T) {
	// 100 kg rejected wire at 2800/kg, 10% quality deduction.
	result, err := Compute(
		[]calc.LineInput{returnLine(100, "2800")},
		ModeRestock,
		types.MustRate("10"),
	)
	require.NoError(t, err)

	assert.Equal(t, types.Amount(252_000), result.Total)
	assert.Equal(t, EffectIncreaseStock, result.InventoryEffect)
	assert.Equal(t, ledger.Credit, result.Direction)
}

func TestCompute_ModeEffects(t *testing.T) {
	cases := []struct {
		mode      Mode
		effect    InventoryEffect
		direction ledger.Direction
	}{
		{ModeStock, EffectDecreaseStock, ledger.Debit},
		{ModeFinancial, EffectNone, ledger.Debit},
		{ModeRestock, EffectIncreaseStock, ledger.Credit},
		{ModeScrap, EffectIncreaseScrap, ledger.Credit},
	}

	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			result, err := Compute(
				[]calc.LineInput{returnLine(50, "100")},
				tc.mode,
				types.MustRate("0"),
			)
			require.NoError(t, err)
			assert.Equal(t, tc.effect, result.InventoryEffect)
			assert.Equal(t, tc.direction, result.Direction)
			assert.Equal(t, types.Amount(5_000), result.Total)
		})
	}
}

func TestCompute_DeductionAppliesToEveryLine(t *testing.T) {
	result, err := Compute(
		[]calc.LineInput{
			returnLine(100, "1000"),
			returnLine(200, "1000"),
		},
		ModeStock,
		types.MustRate("25"),
	)
	require.NoError(t, err)

	// 75,000 + 150,000
	assert.Equal(t, types.Amount(225_000), result.Total)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, types.Amount(75_000), result.Lines[0].Amount)
}

func TestCompute_LineDeductionBeatsUniform(t *testing.T) {
	heavier := returnLine(100, "1000")
	heavier.DeductionPercent = types.MustRate("20")

	result, err := Compute(
		[]calc.LineInput{
			heavier,
			returnLine(100, "1000"),
		},
		ModeStock,
		types.MustRate("10"),
	)
	require.NoError(t, err)

	// The 20% claim on the first line stands; the uniform 10% only
	// covers the line without one.
	require.Len(t, result.Lines, 2)
	assert.Equal(t, types.Amount(80_000), result.Lines[0].Amount)
	assert.Equal(t, types.Amount(90_000), result.Lines[1].Amount)
	assert.Equal(t, types.Amount(170_000), result.Total)
}

func TestCompute_RejectsInvalidInput(t *testing.T) {
	_, err := Compute([]calc.LineInput{returnLine(10, "100")}, Mode("refund"), types.MustRate("0"))
	assert.Error(t, err, "unknown mode")

	_, err = Compute(nil, ModeStock, types.MustRate("0"))
	assert.Error(t, err, "no lines")

	_, err = Compute([]calc.LineInput{returnLine(10, "100")}, ModeStock, types.MustRate("-5"))
	assert.Error(t, err, "negative deduction")

	noRate := returnLine(10, "100")
	noRate.Rate = nil
	_, err = Compute([]calc.LineInput{noRate}, ModeStock, types.MustRate("0"))
	assert.Error(t, err, "missing rate")
}

func TestDocument_BuildsMatchingNote(t *testing.T) {
	partyID := id.New()
	result, err := Compute(
		[]calc.LineInput{returnLine(100, "2800")},
		ModeScrap,
		types.MustRate("10"),
	)
	require.NoError(t, err)

	doc := Document(partyID, ModeScrap, result)

	assert.Equal(t, commercial.TypeCreditNote, doc.Type)
	assert.Equal(t, partyID, doc.PartyID)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, types.Amount(252_000), doc.GrandTotal)
}
