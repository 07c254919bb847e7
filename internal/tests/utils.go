package tests

import (
	"embed"
	"os"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
)

const (
	TestApiUrl    = "https://api.nearblocks.test/"
	TestAccessKey = "test-access-key"
	TestRpcUrl    = "https://rpc.nearblocks.test"
)

// GetConfig returns a mainnet config pointing at test hosts.
func GetConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Network = config.Network_Mainnet
	cfg.ApiConfig.Url = TestApiUrl
	cfg.ApiConfig.AccessKey = TestAccessKey
	cfg.RpcConfig.Urls = []string{TestRpcUrl}
	return cfg
}

func ReplaceEnv(newValues map[string]string, previousValues *map[string]string) {
	for k, v := range newValues {
		(*previousValues)[k] = os.Getenv(k)
		os.Setenv(k, v)
	}
}

func RestoreEnv(previousValues map[string]string) {
	for k, v := range previousValues {
		os.Setenv(k, v)
	}
}

//go:embed testdata
var testData embed.FS

func ReadFixture(name string) ([]byte, error) {
	contents, err := testData.ReadFile("testdata/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture %s", name)
	}
	return contents, nil
}

func loadFixture[T any](name string) (*T, error) {
	contents, err := ReadFixture(name)
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err := nearTypes.UnmarshalUseNumber(contents, v); err != nil {
		return nil, errors.Wrapf(err, "failed to decode fixture %s", name)
	}
	return v, nil
}

// GetFtTransferTransaction is an ft_transfer of 1000000 on usdt.near from
// alice.near to bob.near, indexed after the mainnet cutoff.
func GetFtTransferTransaction() (*nearTypes.ApiTransaction, error) {
	return loadFixture[nearTypes.ApiTransaction]("ftTransferTxn.json")
}

func GetFtTransferReceipts() (*nearTypes.ReceiptApiResponse, error) {
	return loadFixture[nearTypes.ReceiptApiResponse]("ftTransferReceipts.json")
}

// GetNep245Transaction emits one nep245 and one nep141 event from its first receipt.
func GetNep245Transaction() (*nearTypes.ApiTransaction, error) {
	return loadFixture[nearTypes.ApiTransaction]("nep245Txn.json")
}

// GetRpcTransaction is a plain transfer below the mainnet cutoff, so its
// actions come from RPC. The matching RPC responses are rpcTxStatus.json and
// rpcBlock.json.
func GetRpcTransaction() (*nearTypes.ApiTransaction, error) {
	return loadFixture[nearTypes.ApiTransaction]("rpcTxn.json")
}
