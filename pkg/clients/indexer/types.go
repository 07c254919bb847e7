package indexer

import (
	"github.com/nearblocks/txns-action/pkg/nearTypes"
)

type FtResponse struct {
	Contracts []FtContract `json:"contracts"`
}

type FtContract struct {
	Contract         string               `json:"contract"`
	Name             string               `json:"name"`
	Symbol           string               `json:"symbol"`
	Decimals         nearTypes.Amount     `json:"decimals"`
	Price            nearTypes.FlexString `json:"price"`
	OnchainMarketCap nearTypes.FlexString `json:"onchain_market_cap"`
	Volume24h        nearTypes.FlexString `json:"volume_24h"`
	Description      string               `json:"description"`
	Website          string               `json:"website"`
	Icon             *string              `json:"icon"`
}

type MtResponse struct {
	Contracts []MtContract `json:"contracts"`
}

type MtContract struct {
	Base  MtBase  `json:"base"`
	Token MtToken `json:"token"`
}

type MtBase struct {
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	Decimals nearTypes.Amount `json:"decimals"`
	Icon     *string          `json:"icon"`
}

type MtToken struct {
	TokenId     string  `json:"token_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Media       *string `json:"media"`
}

type NftResponse struct {
	Contracts []NftContract `json:"contracts"`
}

type NftContract struct {
	Contract  string  `json:"contract"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Icon      *string `json:"icon"`
	BaseUri   string  `json:"base_uri"`
	Reference string  `json:"reference"`
}
