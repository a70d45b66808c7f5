package trading

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testSigner(t *testing.T) signer.Signer {
	t.Helper()
	s, err := signer.FromHex(testKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOrderAmounts_Buy(t *testing.T) {
	rc := RoundingConfig[types.TickSize001]
	maker, taker := orderAmounts(types.SideBuy, 100, 0.56, rc)
	if !maker.Equal(decimal.RequireFromString("56")) {
		t.Errorf("expected maker 56, got %s", maker)
	}
	if !taker.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected taker 100, got %s", taker)
	}
}

func TestOrderAmounts_Sell(t *testing.T) {
	rc := RoundingConfig[types.TickSize001]
	maker, taker := orderAmounts(types.SideSell, 100, 0.56, rc)
	if !maker.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected maker 100, got %s", maker)
	}
	if !taker.Equal(decimal.RequireFromString("56")) {
		t.Errorf("expected taker 56, got %s", taker)
	}
}

func TestOrderAmounts_RoundsInputs(t *testing.T) {
	rc := RoundingConfig[types.TickSize001]
	// Size truncates to 2 decimals, price rounds to the tick precision.
	maker, taker := orderAmounts(types.SideBuy, 1.999, 0.555, rc)
	if !taker.Equal(decimal.RequireFromString("1.99")) {
		t.Errorf("size should truncate to 1.99, got %s", taker)
	}
	// 1.99 * 0.56 = 1.1144, fits in 4 decimals without rounding.
	if !maker.Equal(decimal.RequireFromString("1.1144")) {
		t.Errorf("expected maker 1.1144, got %s", maker)
	}
}

func TestOrderAmounts_TickSizes(t *testing.T) {
	cases := []struct {
		tick  types.TickSize
		price float64
		want  string
	}{
		{types.TickSize01, 0.56, "0.6"},
		{types.TickSize001, 0.567, "0.57"},
		{types.TickSize0001, 0.5678, "0.568"},
		{types.TickSize00001, 0.56789, "0.5679"},
	}
	for _, tc := range cases {
		rc := RoundingConfig[tc.tick]
		maker, _ := orderAmounts(types.SideBuy, 1, tc.price, rc)
		if !maker.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("tick %s: expected price %s, got %s", tc.tick, tc.want, maker)
		}
	}
}

func TestToTokenUnits(t *testing.T) {
	got := toTokenUnits(decimal.RequireFromString("56.5"), CollateralTokenDecimals)
	if got.String() != "56500000" {
		t.Errorf("expected 56500000, got %s", got)
	}
	got = toTokenUnits(decimal.RequireFromString("0.000001"), CollateralTokenDecimals)
	if got.String() != "1" {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestBuildOrder(t *testing.T) {
	b := newOrderBuilder(testSigner(t), types.ChainPolygon, types.SignatureTypeEOA, "")
	order, err := b.BuildOrder(&types.PlaceOrderParams{
		TokenID:  "123456789",
		Side:     types.SideBuy,
		Price:    0.5,
		Size:     10,
		TickSize: types.TickSize001,
	})
	if err != nil {
		t.Fatalf("BuildOrder failed: %v", err)
	}

	signerAddr := testSigner(t).Address().Hex()
	if order.Maker != signerAddr || order.Signer != signerAddr {
		t.Errorf("maker/signer should default to the signer address: %+v", order)
	}
	if order.Taker != zeroAddress {
		t.Errorf("taker should default to the zero address, got %s", order.Taker)
	}
	if order.MakerAmount != "5000000" || order.TakerAmount != "10000000" {
		t.Errorf("unexpected amounts: maker=%s taker=%s", order.MakerAmount, order.TakerAmount)
	}
	if order.Side != types.SideBuy {
		t.Errorf("unexpected side: %s", order.Side)
	}
	if order.Salt == 0 {
		t.Error("salt should be set")
	}
	if !strings.HasPrefix(order.Signature, "0x") || len(order.Signature) != 2+130 {
		t.Errorf("expected 65-byte hex signature, got %q", order.Signature)
	}
}

func TestBuildOrder_FunderAddress(t *testing.T) {
	funder := "0x1111111111111111111111111111111111111111"
	b := newOrderBuilder(testSigner(t), types.ChainPolygon, types.SignatureTypeGnosisSafe, funder)
	order, err := b.BuildOrder(&types.PlaceOrderParams{
		TokenID:  "1",
		Side:     types.SideSell,
		Price:    0.4,
		Size:     25,
		TickSize: types.TickSize001,
	})
	if err != nil {
		t.Fatalf("BuildOrder failed: %v", err)
	}
	if order.Maker != funder {
		t.Errorf("maker should be the funder address, got %s", order.Maker)
	}
	if order.Signer != testSigner(t).Address().Hex() {
		t.Errorf("signer should stay the key address, got %s", order.Signer)
	}
	if order.SignatureType != int(types.SignatureTypeGnosisSafe) {
		t.Errorf("unexpected signature type: %d", order.SignatureType)
	}
}

func TestBuildOrder_Validation(t *testing.T) {
	b := newOrderBuilder(testSigner(t), types.ChainPolygon, types.SignatureTypeEOA, "")

	cases := []types.PlaceOrderParams{
		{TokenID: "1", Side: types.SideBuy, Price: 0.5, Size: 10, TickSize: "0.5"},
		{TokenID: "not-a-number", Side: types.SideBuy, Price: 0.5, Size: 10, TickSize: types.TickSize001},
		{TokenID: "1", Side: types.SideBuy, Price: 0, Size: 10, TickSize: types.TickSize001},
		{TokenID: "1", Side: types.SideBuy, Price: 0.5, Size: -1, TickSize: types.TickSize001},
	}
	for i, params := range cases {
		if _, err := b.BuildOrder(&params); err == nil {
			t.Errorf("case %d should fail validation: %+v", i, params)
		}
	}
}

func TestGetContractConfig(t *testing.T) {
	cfg, err := GetContractConfig(types.ChainPolygon)
	if err != nil {
		t.Fatalf("polygon config should exist: %v", err)
	}
	if cfg.Exchange != "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E" {
		t.Errorf("unexpected exchange address: %s", cfg.Exchange)
	}
	if _, err := GetContractConfig(types.Chain(1)); err == nil {
		t.Error("unsupported chain should error")
	}
}
