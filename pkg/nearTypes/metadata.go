package nearTypes

type TokenMetadata struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Decimals    int     `json:"decimals"`
	Price       string  `json:"price"`
	MarketCap   string  `json:"marketCap"`
	Volume24h   string  `json:"volume24h"`
	Description string  `json:"description"`
	Website     string  `json:"website"`
	Icon        *string `json:"icon"`
}

type ProcessedTokenMeta struct {
	ContractId string        `json:"contractId"`
	TokenId    string        `json:"tokenId,omitempty"`
	Metadata   TokenMetadata `json:"metadata"`
}

// Key is the dedup key: the contract, or contract:token_id for multi-token and
// NFT metadata.
func (p ProcessedTokenMeta) Key() string {
	return TokenKey(p.ContractId, p.TokenId)
}

func TokenKey(contract, tokenId string) string {
	if tokenId == "" {
		return contract
	}
	return contract + ":" + tokenId
}

// TokenMetadataMap indexes resolved metadata by TokenKey.
type TokenMetadataMap map[string]*TokenMetadata

// ToTokenMetadataMap builds the lookup map. When both contract level and token
// level metadata exist, the contract key keeps the fungible metadata and the
// compound key keeps the token metadata.
func ToTokenMetadataMap(metas []ProcessedTokenMeta) TokenMetadataMap {
	m := make(TokenMetadataMap, len(metas))
	for i := range metas {
		meta := metas[i].Metadata
		m[metas[i].Key()] = &meta
		if metas[i].TokenId != "" {
			if _, ok := m[metas[i].ContractId]; !ok {
				m[metas[i].ContractId] = &meta
			}
		}
	}
	return m
}

// Lookup prefers token level metadata and falls back to the contract. A miss
// returns nil.
func (m TokenMetadataMap) Lookup(contract, tokenId string) *TokenMetadata {
	if m == nil || contract == "" {
		return nil
	}
	if tokenId != "" {
		if meta, ok := m[TokenKey(contract, tokenId)]; ok {
			return meta
		}
	}
	return m[contract]
}
