package tokenMetadata

import (
	"regexp"
	"strings"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/transactionLogParser"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type FetchKind string

const (
	FetchKind_Ft  FetchKind = "ft"
	FetchKind_Mt  FetchKind = "mt"
	FetchKind_Nft FetchKind = "nft"
)

// FetchRequest is one metadata lookup against the indexer.
type FetchRequest struct {
	Kind     FetchKind
	Contract string
	TokenId  string
}

func (f FetchRequest) Key() string {
	return string(f.Kind) + ":" + nearTypes.TokenKey(f.Contract, f.TokenId)
}

var swapPattern = regexp.MustCompile(`^Swapped \d+ (\S+) for \d+ (\S+)`)

// TokenRef is a token identifier of the form "standard:contract[:token_id]".
// Identifiers without a colon are a bare contract.
type TokenRef struct {
	Standard string
	Contract string
	TokenId  string
}

func ParseTokenRef(token string) TokenRef {
	if !strings.Contains(token, ":") {
		return TokenRef{Contract: token}
	}
	parts := strings.SplitN(token, ":", 3)
	ref := TokenRef{Standard: parts[0], Contract: parts[1]}
	if len(parts) > 2 {
		ref.TokenId = parts[2]
	}
	return ref
}

type fetchPlan struct {
	requests *orderedmap.OrderedMap[string, FetchRequest]
}

func newFetchPlan() *fetchPlan {
	return &fetchPlan{requests: orderedmap.New[string, FetchRequest]()}
}

func (p *fetchPlan) add(kind FetchKind, contract string, tokenId string) {
	if contract == "" {
		return
	}
	req := FetchRequest{Kind: kind, Contract: contract, TokenId: tokenId}
	if _, ok := p.requests.Get(req.Key()); ok {
		return
	}
	p.requests.Set(req.Key(), req)
}

// addTokenRef fetches the contract's fungible metadata and, when the reference
// names a token, the token's multi-token metadata too.
func (p *fetchPlan) addTokenRef(token string) {
	ref := ParseTokenRef(token)
	if ref.Contract == "" {
		return
	}
	p.add(FetchKind_Ft, ref.Contract, "")
	if ref.TokenId != "" {
		p.add(FetchKind_Mt, ref.Contract, ref.TokenId)
	}
}

func (p *fetchPlan) list() []FetchRequest {
	out := make([]FetchRequest, 0, p.requests.Len())
	for pair := p.requests.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// PlanFetches lists, in first-seen order and without duplicates, every
// metadata lookup the given logs call for.
func PlanFetches(logs []nearTypes.TransactionLog) []FetchRequest {
	plan := newFetchPlan()

	for _, log := range logs {
		payload := transactionLogParser.Decode(log.Logs)

		switch {
		case payload.Event != nil:
			planEvent(plan, log.Contract, payload.Event)
		case payload.IsString() && log.Contract != "":
			planSentence(plan, log.Contract, payload.Raw)
		}
	}
	return plan.list()
}

func planEvent(plan *fetchPlan, contract string, event *nearTypes.EventLog) {
	switch {
	case event.Standard == "nep245":
		for _, item := range event.DataItems() {
			for _, token := range gjson.GetBytes(item, "token_ids").Array() {
				plan.addTokenRef(token.String())
			}
		}
	case event.Standard == "dip4" && event.Event == "token_diff",
		event.Standard == "nep141" && strings.HasPrefix(event.Event, "ft_"):
		plan.add(FetchKind_Ft, contract, "")
		for _, item := range event.DataItems() {
			diff := gjson.GetBytes(item, "diff")
			if !diff.IsObject() {
				continue
			}
			keys := make([]string, 0, 2)
			diff.ForEach(func(key, value gjson.Result) bool {
				keys = append(keys, key.String())
				return true
			})
			if len(keys) != 2 {
				continue
			}
			for _, key := range keys {
				plan.addTokenRef(key)
			}
		}
	case event.Standard == "nep171":
		plan.add(FetchKind_Nft, contract, "")
	case event.Standard == "burrow":
		for _, item := range event.DataItems() {
			plan.add(FetchKind_Ft, gjson.GetBytes(item, "token_id").String(), "")
		}
	}
}

func planSentence(plan *fetchPlan, contract string, line string) {
	if match := swapPattern.FindStringSubmatch(line); match != nil {
		plan.add(FetchKind_Ft, match[1], "")
		plan.add(FetchKind_Ft, match[2], "")
		return
	}
	// withdraw, burn, transfer and anything else resolve to the emitting contract
	plan.add(FetchKind_Ft, contract, "")
}
