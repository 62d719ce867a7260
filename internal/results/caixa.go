package results

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/palpiteiro/tipengine/internal/lotto"
)

// caixaResult is the subset of the lottery portal payload we read.
type caixaResult struct {
	Numero                       int             `json:"numero"`
	DataApuracao                 string          `json:"dataApuracao"`
	ListaDezenas                 []string        `json:"listaDezenas"`
	ListaRateioPremio            []caixaRateio   `json:"listaRateioPremio"`
	Acumulado                    bool            `json:"acumulado"`
	ValorEstimadoProximoConcurso decimal.Decimal `json:"valorEstimadoProximoConcurso"`
}

type caixaRateio struct {
	Faixa              int             `json:"faixa"`
	DescricaoFaixa     string          `json:"descricaoFaixa"`
	NumeroDeGanhadores int             `json:"numeroDeGanhadores"`
	ValorPremio        decimal.Decimal `json:"valorPremio"`
}

const caixaDate = "02/01/2006"

var brasilia = time.FixedZone("BRT", -3*60*60)

// Parse decodes a lottery portal payload into an Official result.
func Parse(data []byte, stake decimal.Decimal) (lotto.Official, error) {
	var raw caixaResult
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return lotto.Official{}, fmt.Errorf("decode result: %w", err)
	}

	nums := make([]int, 0, len(raw.ListaDezenas))
	for _, s := range raw.ListaDezenas {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return lotto.Official{}, &lotto.InvalidInputError{Field: "listaDezenas", Reason: fmt.Sprintf("not a number: %q", s)}
		}
		nums = append(nums, n)
	}
	d, err := lotto.NewDrawing(nums)
	if err != nil {
		return lotto.Official{}, err
	}

	var date time.Time
	if raw.DataApuracao != "" {
		if date, err = time.ParseInLocation(caixaDate, raw.DataApuracao, brasilia); err != nil {
			return lotto.Official{}, &lotto.InvalidInputError{Field: "dataApuracao", Reason: err.Error()}
		}
	}

	tiers := make([]lotto.PrizeTier, 0, len(raw.ListaRateioPremio))
	for _, r := range raw.ListaRateioPremio {
		tiers = append(tiers, lotto.PrizeTier{
			Hits:    tierHits(r),
			Payout:  r.ValorPremio,
			Winners: r.NumeroDeGanhadores,
		})
	}
	table, err := lotto.NewPrizeTable(tiers)
	if err != nil {
		return lotto.Official{}, err
	}

	return lotto.Official{
		Contest:      raw.Numero,
		Date:         date,
		Drawing:      d,
		Prizes:       table,
		StakePerPick: stake,
		Accumulated:  raw.Acumulado,
		NextEstimate: raw.ValorEstimadoProximoConcurso,
	}, nil
}

// tierHits reads "15 acertos"; band 1 is 15 hits, band 5 is 11.
func tierHits(r caixaRateio) int {
	if f := strings.Fields(r.DescricaoFaixa); len(f) > 0 {
		if n, err := strconv.Atoi(f[0]); err == nil {
			return n
		}
	}
	return lotto.PickSize + 1 - r.Faixa
}
