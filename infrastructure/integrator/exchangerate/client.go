package exchangerate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/internal/config"
	"github.com/vfg2006/cost-reconciler-api/pkg/utils"
)

// Service consulta a taxa de câmbio entre duas moedas para um dia. Serviço
// externo; usado apenas quando uma plataforma reporta custo em moeda
// diferente da moeda de relatório do site.
type Service interface {
	Rate(from, to string, date time.Time) (float64, error)
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

type ExchangeRateClient struct {
	httpClient *http.Client
	baseURL    string

	// Cache com granularidade diária: a taxa de um (from, to, dia) não muda
	// entre as consultas de uma mesma reconciliação.
	mu    sync.Mutex
	cache map[string]float64
}

func NewClient(cfg *config.Config) Service {
	return &ExchangeRateClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.ExchangeRate.URL,
		cache:   make(map[string]float64),
	}
}

func (c *ExchangeRateClient) Rate(from, to string, date time.Time) (float64, error) {
	if from == to || from == "" || to == "" {
		return 1, nil
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", from, to, date.Format(time.DateOnly))

	c.mu.Lock()
	if rate, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return rate, nil
	}
	c.mu.Unlock()

	rate, err := c.fetchRate(from, to, date)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.cache[cacheKey] = rate
	c.mu.Unlock()

	return rate, nil
}

func (c *ExchangeRateClient) fetchRate(from, to string, date time.Time) (float64, error) {
	endpoint := fmt.Sprintf("%s/%s?base=%s&symbols=%s",
		c.baseURL,
		date.Format(time.DateOnly),
		url.QueryEscape(from),
		url.QueryEscape(to),
	)

	data, err := utils.MakeRequest(c.httpClient, endpoint)
	if err != nil {
		return 0, fmt.Errorf("erro ao consultar taxa de câmbio: %w", err)
	}

	var body ratesResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return 0, fmt.Errorf("erro ao decodificar resposta de câmbio: %w", err)
	}

	rate, ok := body.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("taxa de câmbio %s->%s indisponível para %s", from, to, date.Format(time.DateOnly))
	}

	logrus.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
		"date": date.Format(time.DateOnly),
		"rate": rate,
	}).Debug("Taxa de câmbio obtida do serviço externo")

	return rate, nil
}
