package service

import (
	"context"
	"strings"
	"time"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/fechas"
	"crmventas/internal/infra"
	"crmventas/internal/model"
	"crmventas/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// EncabezadosFacturacion are the column titles of the ledger, in campos order.
var EncabezadosFacturacion = [model.CamposFacturacion]string{
	"Ventas", "Activaciones", "Portabilidades", "Renovaciones", "Equipos",
	"Accesorios", "Total del Día", "Comisión", "Notas",
}

type FacturacionService interface {
	Upsert(ctx context.Context, actor Viewer, req dto.UpsertFacturacionRequest) (*dto.UpsertFacturacionResponse, error)
	Mes(ctx context.Context, anio, mes int) (*dto.FacturacionMesResponse, error)
	Anual(ctx context.Context, anio int) (*dto.FacturacionAnualResponse, error)
	PDF(ctx context.Context, anio, mes int) ([]byte, error)
	XLSX(ctx context.Context, anio, mes int) ([]byte, error)
}

type facturacionService struct {
	repo repository.FacturacionRepository
}

func NewFacturacionService(repo repository.FacturacionRepository) FacturacionService {
	return &facturacionService{repo: repo}
}

// EnsureLen9 pads with empty strings or truncates so the result has exactly
// nine columns. Applying it twice changes nothing.
func EnsureLen9(campos []string) []string {
	out := make([]string, model.CamposFacturacion)
	copy(out, campos)
	return out
}

// ParseMonto reads a money string such as "$1,234.50". Currency signs, thousands
// separators and spaces are ignored; anything unparsable counts as zero.
func ParseMonto(s string) decimal.Decimal {
	clean := strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func validMonth(anio, mes int) error {
	if anio < 2000 || anio > 2100 || mes < 1 || mes > 12 {
		return apierror.Validation("anio/mes invalidos")
	}
	return nil
}

func (s *facturacionService) Upsert(ctx context.Context, actor Viewer, req dto.UpsertFacturacionRequest) (*dto.UpsertFacturacionResponse, error) {
	k, err := fechas.Parse(req.Fecha)
	if err != nil {
		return nil, apierror.Validation("fecha invalida: use YYYY-MM-DD o DD/MM/YYYY")
	}
	row := &model.FacturacionLinea{
		Anio:      k.Anio,
		Mes:       k.Mes,
		Dia:       k.Dia,
		Fecha:     k.Display(),
		Campos:    pq.StringArray(EnsureLen9(req.Campos)),
		CreatedBy: actor.Username,
		UpdatedBy: actor.Username,
	}
	inserted, err := s.repo.Upsert(ctx, row)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	return &dto.UpsertFacturacionResponse{
		Success:  true,
		Upserted: inserted,
		Data:     facturacionToResponse(row),
	}, nil
}

func (s *facturacionService) Mes(ctx context.Context, anio, mes int) (*dto.FacturacionMesResponse, error) {
	if err := validMonth(anio, mes); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMonth(ctx, anio, mes)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	total := decimal.Zero
	data := make([]dto.FacturacionLineaResponse, len(rows))
	for i := range rows {
		data[i] = facturacionToResponse(&rows[i])
		total = total.Add(ParseMonto(data[i].Campos[model.CampoTotalDia]))
	}
	return &dto.FacturacionMesResponse{Success: true, Anio: anio, Mes: mes, Data: data, Total: total.String()}, nil
}

func (s *facturacionService) Anual(ctx context.Context, anio int) (*dto.FacturacionAnualResponse, error) {
	if err := validMonth(anio, 1); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListYear(ctx, anio)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	var porMes [12]decimal.Decimal
	for _, r := range rows {
		if r.Mes < 1 || r.Mes > 12 {
			continue
		}
		campos := EnsureLen9(r.Campos)
		porMes[r.Mes-1] = porMes[r.Mes-1].Add(ParseMonto(campos[model.CampoTotalDia]))
	}
	resp := &dto.FacturacionAnualResponse{Success: true, Anio: anio}
	total := decimal.Zero
	for i, d := range porMes {
		resp.Totales[i] = d.String()
		total = total.Add(d)
	}
	resp.Total = total.String()
	return resp, nil
}

func (s *facturacionService) report(ctx context.Context, anio, mes int) (infra.BillingReport, error) {
	m, err := s.Mes(ctx, anio, mes)
	if err != nil {
		return infra.BillingReport{}, err
	}
	rep := infra.BillingReport{
		Titulo:  "Facturación diaria",
		Anio:    anio,
		Mes:     mes,
		Headers: append([]string{"Fecha"}, EncabezadosFacturacion[:]...),
		Total:   m.Total,
	}
	for _, d := range m.Data {
		rep.Rows = append(rep.Rows, append([]string{d.Fecha}, d.Campos...))
	}
	return rep, nil
}

func (s *facturacionService) PDF(ctx context.Context, anio, mes int) ([]byte, error) {
	rep, err := s.report(ctx, anio, mes)
	if err != nil {
		return nil, err
	}
	out, err := infra.GenerateBillingPDF(rep)
	if err != nil {
		return nil, apierror.Internal("No se pudo generar el PDF", err)
	}
	return out, nil
}

func (s *facturacionService) XLSX(ctx context.Context, anio, mes int) ([]byte, error) {
	rep, err := s.report(ctx, anio, mes)
	if err != nil {
		return nil, err
	}
	out, err := infra.GenerateBillingXLSX(rep)
	if err != nil {
		return nil, apierror.Internal("No se pudo generar la planilla", err)
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func facturacionToResponse(f *model.FacturacionLinea) dto.FacturacionLineaResponse {
	return dto.FacturacionLineaResponse{
		ID:        f.ID.String(),
		Fecha:     f.Fecha,
		Anio:      f.Anio,
		Mes:       f.Mes,
		Dia:       f.Dia,
		Campos:    EnsureLen9(f.Campos),
		UpdatedBy: f.UpdatedBy,
		UpdatedAt: f.UpdatedAt.Format(time.RFC3339),
	}
}
