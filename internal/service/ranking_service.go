package service

import (
	"context"
	"strings"
	"time"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/fechas"
	"crmventas/internal/ranking"
	"crmventas/internal/repository"

	"github.com/rs/zerolog/log"
)

type RankingService interface {
	// Tabs computes the three leaderboards of a month. Invalid parameters are
	// a ValidationError; a store failure is reported inside the response.
	Tabs(ctx context.Context, filter dto.RankingFilter) (*dto.RankingTabsResponse, error)
}

type rankingService struct {
	leads          repository.LeadRepository
	defaultProduct string
	now            func() time.Time
}

func NewRankingService(leads repository.LeadRepository, defaultProduct string) RankingService {
	return &rankingService{leads: leads, defaultProduct: defaultProduct, now: time.Now}
}

func (s *rankingService) Tabs(ctx context.Context, filter dto.RankingFilter) (*dto.RankingTabsResponse, error) {
	month := fechas.Month{Anio: s.now().Year(), Mes: int(s.now().Month())}
	if strings.TrimSpace(filter.Month) != "" {
		m, err := fechas.ParseMonth(filter.Month)
		if err != nil {
			return nil, apierror.Validation("month invalido: use YYYY-MM")
		}
		month = m
	}
	scope, err := ranking.ParseScope(filter.ActivationGroup)
	if err != nil {
		return nil, apierror.Validation(err.Error())
	}
	product := s.defaultProduct
	if filter.Product != nil {
		product = strings.TrimSpace(*filter.Product)
	}

	resp := &dto.RankingTabsResponse{
		Month:           month.String(),
		ActivationGroup: string(scope),
		Product:         product,
	}

	desde, hasta := month.Range()
	leads, err := s.leads.ListMonth(ctx, desde, hasta)
	if err != nil {
		log.Error().Err(err).Str("month", resp.Month).Msg("ranking: failed to load leads")
		resp.Error = "No se pudieron cargar las ventas del mes"
		resp.Tabs = ranking.EmptyTabs()
		return resp, nil
	}

	entries := make([]ranking.Entry, len(leads))
	for i, l := range leads {
		entries[i] = ranking.Entry{
			AgenteNombre: l.AgenteNombre,
			Team:         l.Team,
			Status:       l.Status,
			Producto:     l.Producto,
			TipoServicio: l.TipoServicio,
			Puntaje:      l.Puntaje,
		}
	}
	resp.Success = true
	resp.Tabs = ranking.ComputeTabs(entries, scope, product)
	return resp, nil
}
