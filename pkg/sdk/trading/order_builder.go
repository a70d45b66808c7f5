package trading

import (
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// RoundConfig fixes the decimal places for a tick size.
type RoundConfig struct {
	Price  int32
	Size   int32
	Amount int32
}

// RoundingConfig maps tick size to the exchange precision rules.
var RoundingConfig = map[types.TickSize]RoundConfig{
	types.TickSize01:    {Price: 1, Size: 2, Amount: 3},
	types.TickSize001:   {Price: 2, Size: 2, Amount: 4},
	types.TickSize0001:  {Price: 3, Size: 2, Amount: 5},
	types.TickSize00001: {Price: 4, Size: 2, Amount: 6},
}

// orderBuilder assembles and signs exchange orders.
type orderBuilder struct {
	signer        signer.Signer
	chainID       types.Chain
	signatureType types.SignatureType
	funderAddress string
}

func newOrderBuilder(s signer.Signer, chainID types.Chain, signatureType types.SignatureType, funderAddress string) *orderBuilder {
	return &orderBuilder{
		signer:        s,
		chainID:       chainID,
		signatureType: signatureType,
		funderAddress: funderAddress,
	}
}

// BuildOrder turns PlaceOrderParams into a signed exchange order.
func (b *orderBuilder) BuildOrder(params *types.PlaceOrderParams) (*types.SignedOrder, error) {
	contracts, err := GetContractConfig(b.chainID)
	if err != nil {
		return nil, err
	}
	rc, ok := RoundingConfig[params.TickSize]
	if !ok {
		return nil, types.NewError(types.ErrCodeBadInput, "unsupported tick size: %s", params.TickSize)
	}
	if params.Price <= 0 || params.Size <= 0 {
		return nil, types.NewError(types.ErrCodeBadInput, "price and size must be positive")
	}

	tokenID, ok := new(big.Int).SetString(params.TokenID, 10)
	if !ok {
		return nil, types.NewError(types.ErrCodeBadInput, "invalid token id: %s", params.TokenID)
	}

	signerAddress := b.signer.Address().Hex()
	maker := signerAddress
	if b.funderAddress != "" {
		maker = b.funderAddress
	}

	rawMaker, rawTaker := orderAmounts(params.Side, params.Size, params.Price, rc)
	makerAmount := toTokenUnits(rawMaker, CollateralTokenDecimals)
	takerAmount := toTokenUnits(rawTaker, CollateralTokenDecimals)

	taker := zeroAddress
	if params.Taker != nil && *params.Taker != "" {
		taker = *params.Taker
	}
	feeRateBps := big.NewInt(0)
	if params.FeeRateBps != nil {
		feeRateBps = big.NewInt(int64(*params.FeeRateBps))
	}
	nonce := big.NewInt(0)
	if params.Nonce != nil {
		nonce = big.NewInt(int64(*params.Nonce))
	}
	expiration := big.NewInt(0)
	if params.Expiration != nil {
		expiration = big.NewInt(*params.Expiration)
	}

	exchangeAddress := contracts.Exchange
	if params.NegRisk {
		exchangeAddress = contracts.NegRiskExchange
	}

	od := &orderData{
		Salt:          time.Now().UnixNano(),
		Maker:         maker,
		Signer:        signerAddress,
		Taker:         taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          params.Side,
		SignatureType: b.signatureType,
	}

	signature, err := buildOrderSignature(b.signer, b.chainID, exchangeAddress, od)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "sign order for token %s", params.TokenID)
	}

	return &types.SignedOrder{
		Salt:          od.Salt,
		Maker:         maker,
		Signer:        signerAddress,
		Taker:         taker,
		TokenID:       params.TokenID,
		MakerAmount:   makerAmount.String(),
		TakerAmount:   takerAmount.String(),
		Expiration:    expiration.String(),
		Nonce:         nonce.String(),
		FeeRateBps:    feeRateBps.String(),
		Side:          params.Side,
		SignatureType: int(b.signatureType),
		Signature:     signature,
	}, nil
}

// orderAmounts computes the raw maker/taker amounts under the tick size
// precision rules. On BUY the maker pays collateral and takes tokens; on
// SELL the maker provides tokens and takes collateral.
func orderAmounts(side types.Side, size, price float64, rc RoundConfig) (maker, taker decimal.Decimal) {
	rawPrice := decimal.NewFromFloat(price).Round(rc.Price)
	rawSize := decimal.NewFromFloat(size).RoundDown(rc.Size)

	amount := rawSize.Mul(rawPrice)
	if decimalPlaces(amount) > rc.Amount {
		amount = amount.RoundUp(rc.Amount + 4)
		if decimalPlaces(amount) > rc.Amount {
			amount = amount.RoundDown(rc.Amount)
		}
	}

	if side == types.SideBuy {
		return amount, rawSize
	}
	return rawSize, amount
}

func decimalPlaces(d decimal.Decimal) int32 {
	s := d.String()
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return int32(len(s) - i - 1)
}

// toTokenUnits scales a decimal amount by 10^decimals and truncates,
// like ethers' parseUnits.
func toTokenUnits(d decimal.Decimal, decimals int32) *big.Int {
	return d.Shift(decimals).Truncate(0).BigInt()
}
