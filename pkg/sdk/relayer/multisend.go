package relayer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Gnosis MultiSend contract on Polygon.
const multiSendAddress = "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761"

const multiSendABIJSON = `[{"inputs":[{"internalType":"bytes","name":"transactions","type":"bytes"}],"name":"multiSend","outputs":[],"stateMutability":"payable","type":"function"}]`

const conditionalTokensABIJSON = `[
	{"inputs":[
		{"internalType":"contract IERC20","name":"collateralToken","type":"address"},
		{"internalType":"bytes32","name":"parentCollectionId","type":"bytes32"},
		{"internalType":"bytes32","name":"conditionId","type":"bytes32"},
		{"internalType":"uint256[]","name":"indexSets","type":"uint256[]"}],
	 "name":"redeemPositions","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"contract IERC20","name":"collateralToken","type":"address"},
		{"internalType":"bytes32","name":"parentCollectionId","type":"bytes32"},
		{"internalType":"bytes32","name":"conditionId","type":"bytes32"},
		{"internalType":"uint256[]","name":"partition","type":"uint256[]"},
		{"internalType":"uint256","name":"amount","type":"uint256"}],
	 "name":"splitPosition","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"contract IERC20","name":"collateralToken","type":"address"},
		{"internalType":"bytes32","name":"parentCollectionId","type":"bytes32"},
		{"internalType":"bytes32","name":"conditionId","type":"bytes32"},
		{"internalType":"uint256[]","name":"partition","type":"uint256[]"},
		{"internalType":"uint256","name":"amount","type":"uint256"}],
	 "name":"mergePositions","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

var (
	multiSendABI         abi.ABI
	conditionalTokensABI abi.ABI
)

func init() {
	var err error
	multiSendABI, err = abi.JSON(strings.NewReader(multiSendABIJSON))
	if err != nil {
		panic(err)
	}
	conditionalTokensABI, err = abi.JSON(strings.NewReader(conditionalTokensABIJSON))
	if err != nil {
		panic(err)
	}
}

// encodeTransactions collapses a batch into a single call target. A
// single transaction goes through as-is; multiple transactions are
// packed into one multiSend call, which the Safe must execute as a
// DelegateCall.
func encodeTransactions(txns []SafeTransaction) (to common.Address, data []byte, operation uint8, err error) {
	if len(txns) == 1 {
		return txns[0].To, txns[0].Data, txns[0].Operation, nil
	}

	// multiSend packs each transaction as:
	// uint8 operation + address to + uint256 value + uint256 dataLength + bytes data
	var packed []byte
	for _, tx := range txns {
		value := tx.Value
		if value == nil {
			value = big.NewInt(0)
		}
		packed = append(packed, tx.Operation)
		packed = append(packed, tx.To.Bytes()...)
		packed = append(packed, common.LeftPadBytes(value.Bytes(), 32)...)
		packed = append(packed, common.LeftPadBytes(big.NewInt(int64(len(tx.Data))).Bytes(), 32)...)
		packed = append(packed, tx.Data...)
	}

	data, err = multiSendABI.Pack("multiSend", packed)
	if err != nil {
		return common.Address{}, nil, 0, errors.Wrap(err, "pack multiSend")
	}
	return common.HexToAddress(multiSendAddress), data, 1, nil
}

// BuildRedeemTransaction builds a ConditionalTokens.redeemPositions call
// for a resolved market.
func BuildRedeemTransaction(conditionID common.Hash, indexSets []*big.Int) (SafeTransaction, error) {
	data, err := conditionalTokensABI.Pack(
		"redeemPositions",
		common.HexToAddress(collateralAddress),
		common.Hash{},
		conditionID,
		indexSets,
	)
	if err != nil {
		return SafeTransaction{}, errors.Wrap(err, "pack redeemPositions")
	}
	return SafeTransaction{
		To:    common.HexToAddress(conditionalTokensAddress),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}

// BuildSplitTransaction builds a splitPosition call that converts
// collateral into a full YES/NO outcome pair.
func BuildSplitTransaction(conditionID common.Hash, amount *big.Int) (SafeTransaction, error) {
	data, err := conditionalTokensABI.Pack(
		"splitPosition",
		common.HexToAddress(collateralAddress),
		common.Hash{},
		conditionID,
		binaryPartition(),
		amount,
	)
	if err != nil {
		return SafeTransaction{}, errors.Wrap(err, "pack splitPosition")
	}
	return SafeTransaction{
		To:    common.HexToAddress(conditionalTokensAddress),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}

// BuildMergeTransaction builds a mergePositions call that converts a
// full YES/NO outcome pair back into collateral.
func BuildMergeTransaction(conditionID common.Hash, amount *big.Int) (SafeTransaction, error) {
	data, err := conditionalTokensABI.Pack(
		"mergePositions",
		common.HexToAddress(collateralAddress),
		common.Hash{},
		conditionID,
		binaryPartition(),
		amount,
	)
	if err != nil {
		return SafeTransaction{}, errors.Wrap(err, "pack mergePositions")
	}
	return SafeTransaction{
		To:    common.HexToAddress(conditionalTokensAddress),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}

func binaryPartition() []*big.Int {
	return []*big.Int{big.NewInt(1), big.NewInt(2)}
}
