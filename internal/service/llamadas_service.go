package service

import (
	"context"
	"time"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/fechas"
	"crmventas/internal/model"
	"crmventas/internal/repository"
)

type LlamadasService interface {
	Mes(ctx context.Context, filter dto.LlamadasFilter) (*dto.LlamadasMesResponse, error)
	Upsert(ctx context.Context, actor Viewer, req dto.UpsertLlamadasRequest) (*dto.UpsertLlamadasResponse, error)
}

type llamadasService struct {
	repo repository.LlamadasRepository
	now  func() time.Time
}

func NewLlamadasService(repo repository.LlamadasRepository) LlamadasService {
	return &llamadasService{repo: repo, now: time.Now}
}

// Mes defaults to the current month when anio or mes are missing.
func (s *llamadasService) Mes(ctx context.Context, filter dto.LlamadasFilter) (*dto.LlamadasMesResponse, error) {
	anio, mes := filter.Anio, filter.Mes
	if anio == 0 || mes == 0 {
		now := s.now()
		anio, mes = now.Year(), int(now.Month())
	}
	if err := validMonth(anio, mes); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMonth(ctx, anio, mes)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	resp := &dto.LlamadasMesResponse{Success: true, Anio: anio, Mes: mes, Data: make([]dto.LlamadasLineaResponse, len(rows))}
	for i := range rows {
		resp.Data[i] = llamadaToResponse(&rows[i])
		resp.Llamadas += rows[i].Llamadas
		resp.Ventas += rows[i].Ventas
	}
	return resp, nil
}

func (s *llamadasService) Upsert(ctx context.Context, actor Viewer, req dto.UpsertLlamadasRequest) (*dto.UpsertLlamadasResponse, error) {
	k, err := fechas.Parse(req.Fecha)
	if err != nil {
		return nil, apierror.Validation("fecha invalida: use YYYY-MM-DD o DD/MM/YYYY")
	}
	if req.Llamadas < 0 || req.Ventas < 0 {
		return nil, apierror.Validation("llamadas y ventas no pueden ser negativos")
	}
	row := &model.LlamadaVentaLinea{
		Fecha:     k.Display(),
		Anio:      k.Anio,
		Mes:       k.Mes,
		Dia:       k.Dia,
		Llamadas:  req.Llamadas,
		Ventas:    req.Ventas,
		UpdatedBy: actor.Username,
	}
	inserted, err := s.repo.Upsert(ctx, row)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	return &dto.UpsertLlamadasResponse{Success: true, Upserted: inserted, Data: llamadaToResponse(row)}, nil
}

func llamadaToResponse(l *model.LlamadaVentaLinea) dto.LlamadasLineaResponse {
	return dto.LlamadasLineaResponse{
		ID:       l.ID.String(),
		Fecha:    l.Fecha,
		Dia:      l.Dia,
		Llamadas: l.Llamadas,
		Ventas:   l.Ventas,
	}
}
