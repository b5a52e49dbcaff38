package reports

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/lib/xlsx"
)

const dateLayout = "2006-01-02"

// Export строит книгу Excel для отчёта kind.
func (s *Service) Export(ctx context.Context, p access.Principal, kind Kind) ([]byte, error) {
	const op = "reports.Export"

	var (
		sheet xlsx.Sheet
		err   error
	)
	switch kind {
	case KindCategories:
		sheet, err = s.categoriesSheet(ctx, p)
	case KindContacts:
		sheet, err = s.contactsSheet(ctx, p)
	case KindBirds:
		sheet, err = s.birdsSheet(ctx, p)
	case KindAwards:
		sheet, err = s.awardsSheet(ctx, p)
	default:
		_, err = ParseKind(string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := xlsx.Build(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *Service) categoriesSheet(ctx context.Context, p access.Principal) (xlsx.Sheet, error) {
	report, err := s.Categories(ctx, p)
	if err != nil {
		return xlsx.Sheet{}, err
	}
	sheet := xlsx.Sheet{Name: "Categorías", Header: []string{"Categoría", "Cantidad", "Exportación"}}
	for _, g := range report.Categories {
		sheet.Rows = append(sheet.Rows, []any{g.Category, valueOrZero(g.TotalQuantity), valueOrZero(g.TotalExport)})
	}
	sheet.Rows = append(sheet.Rows, []any{"Total", report.GrandTotal, report.GrandExport})
	return sheet, nil
}

func (s *Service) contactsSheet(ctx context.Context, p access.Principal) (xlsx.Sheet, error) {
	contacts, err := s.Contacts(ctx, p)
	if err != nil {
		return xlsx.Sheet{}, err
	}
	sheet := xlsx.Sheet{Name: "Contactos", Header: []string{"Nombre", "Email", "Teléfono", "Dirección"}}
	for _, c := range contacts {
		sheet.Rows = append(sheet.Rows, []any{c.FullName, c.Email, c.Phone, c.Address})
	}
	return sheet, nil
}

func (s *Service) birdsSheet(ctx context.Context, p access.Principal) (xlsx.Sheet, error) {
	rows, err := s.Birds(ctx, p)
	if err != nil {
		return xlsx.Sheet{}, err
	}
	sheet := xlsx.Sheet{
		Name: "Aves",
		Header: []string{
			"Asociado", "Categoría", "Cantidad", "Exportación",
			"Alimento por ave", "Tipo de alimento", "Proceso", "Alimento requerido", "Actualizado",
		},
	}
	for _, r := range rows {
		var perBird any
		if r.FoodPerBird != nil {
			perBird = *r.FoodPerBird
		}
		sheet.Rows = append(sheet.Rows, []any{
			r.FullName, r.Category, r.Quantity, r.ExportQuantity,
			perBird, r.FoodType, r.FoodProcess, r.FoodRequired, r.LastUpdated.Format(dateLayout),
		})
	}
	return sheet, nil
}

func (s *Service) awardsSheet(ctx context.Context, p access.Principal) (xlsx.Sheet, error) {
	rows, err := s.Awards(ctx, p)
	if err != nil {
		return xlsx.Sheet{}, err
	}
	sheet := xlsx.Sheet{
		Name:   "Premios",
		Header: []string{"Asociado", "Concurso", "Fecha", "Posición", "Categoría", "Descripción"},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			r.FullName, r.ContestName, r.AwardDate.Format(dateLayout), r.Position, r.Category, r.Description,
		})
	}
	return sheet, nil
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
