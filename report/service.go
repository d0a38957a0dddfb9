package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fleetdesk/fleetdesk/internal/invoice"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
	"github.com/fleetdesk/fleetdesk/web"
)

// StatementSource builds owner statements.
type StatementSource interface {
	Statement(ctx context.Context, owner string, from, to time.Time) (ledger.Statement, error)
}

// InvoiceSource loads invoices with recomputed totals.
type InvoiceSource interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (invoice.Checked, error)
}

// PDFRenderer converts HTML into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service renders statements and invoices. Identical concurrent requests
// share one render.
type Service struct {
	statements StatementSource
	invoices   InvoiceSource
	pdf        PDFRenderer
	format     Formatter
	statement  *template.Template
	invoice    *template.Template
	group      singleflight.Group
}

// NewService parses the document templates and wires the data sources.
func NewService(statements StatementSource, invoices InvoiceSource, pdf PDFRenderer, currencySymbol string) (*Service, error) {
	if pdf == nil {
		return nil, errors.New("report: pdf renderer required")
	}
	statement, err := template.ParseFS(web.Templates, "templates/reports/statement.html")
	if err != nil {
		return nil, fmt.Errorf("report: parse statement template: %w", err)
	}
	inv, err := template.ParseFS(web.Templates, "templates/reports/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("report: parse invoice template: %w", err)
	}
	return &Service{
		statements: statements,
		invoices:   invoices,
		pdf:        pdf,
		format:     NewFormatter(currencySymbol),
		statement:  statement,
		invoice:    inv,
	}, nil
}

type ownerLine struct {
	Name  string
	Net   string
	Owing bool
}

type statementRow struct {
	Date        string
	Category    string
	Description string
	Account     string
	Amount      string
}

type statementView struct {
	Owner       string
	Period      string
	GeneratedAt string
	Owners      []ownerLine
	TotalOwing  string
	Rows        []statementRow
	Excluded    int
}

type invoiceLine struct {
	Name       string
	Quantity   int
	UnitPrice  string
	IncludeVAT bool
}

type invoiceView struct {
	Number         string
	Date           string
	Lines          []invoiceLine
	PartsTotal     string
	LaborCost      string
	MaterialsTotal string
	Subtotal       string
	VATAmount      string
	Total          string
	Paid           string
	Remaining      string
	Status         string
}

// StatementHTML renders an owner statement as HTML.
func (s *Service) StatementHTML(ctx context.Context, owner string, from, to time.Time) (string, error) {
	if s.statements == nil {
		return "", errors.New("report: statement source not configured")
	}
	st, err := s.statements.Statement(ctx, owner, from, to)
	if err != nil {
		return "", err
	}
	return s.execute(s.statement, s.statementView(st))
}

// StatementPDF renders an owner statement as PDF.
func (s *Service) StatementPDF(ctx context.Context, owner string, from, to time.Time) ([]byte, error) {
	key := "statement|" + owner + "|" + dateKey(from) + "|" + dateKey(to)
	return s.render(ctx, key, func() (string, error) {
		return s.StatementHTML(ctx, owner, from, to)
	})
}

// InvoiceHTML renders an invoice as HTML using its recomputed totals.
func (s *Service) InvoiceHTML(ctx context.Context, id uuid.UUID) (string, error) {
	if s.invoices == nil {
		return "", errors.New("report: invoice source not configured")
	}
	checked, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return "", err
	}
	return s.execute(s.invoice, s.invoiceView(checked.Invoice))
}

// InvoicePDF renders an invoice as PDF.
func (s *Service) InvoicePDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return s.render(ctx, "invoice|"+id.String(), func() (string, error) {
		return s.InvoiceHTML(ctx, id)
	})
}

func (s *Service) render(ctx context.Context, key string, html func() (string, error)) ([]byte, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		doc, err := html()
		if err != nil {
			return nil, err
		}
		return s.pdf.RenderHTML(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Service) execute(tpl *template.Template, data any) (string, error) {
	buf := &bytes.Buffer{}
	if err := tpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) statementView(st ledger.Statement) statementView {
	view := statementView{
		Owner:       st.Owner,
		Period:      s.period(st.From, st.To),
		GeneratedAt: s.format.Date(st.GeneratedAt),
		TotalOwing:  s.format.Money(st.Summary.TotalOwing),
		Excluded:    len(st.Summary.Excluded),
	}
	for _, name := range st.Summary.Owners() {
		net := st.Summary.PerOwnerNet[name]
		view.Owners = append(view.Owners, ownerLine{Name: name, Net: s.format.Money(net), Owing: net < 0})
	}
	for _, tx := range st.Transactions {
		amount := tx.Amount
		if tx.Type == ledger.TypeExpense {
			amount = -amount
		}
		view.Rows = append(view.Rows, statementRow{
			Date:        s.format.Date(tx.Date),
			Category:    tx.Category,
			Description: tx.Description,
			Account:     accountLabel(tx),
			Amount:      s.format.Money(amount),
		})
	}
	return view
}

func (s *Service) invoiceView(inv invoice.Invoice) invoiceView {
	view := invoiceView{
		Number:         inv.Number,
		Date:           s.format.Date(inv.Date),
		PartsTotal:     s.format.Money(inv.PartsTotal),
		LaborCost:      s.format.Money(inv.LaborCost),
		MaterialsTotal: s.format.Money(inv.MaterialsTotal),
		Subtotal:       s.format.Money(inv.Subtotal),
		VATAmount:      s.format.Money(inv.VATAmount),
		Total:          s.format.Money(inv.Total),
		Paid:           s.format.Money(inv.PaidAmount),
		Remaining:      s.format.Money(inv.RemainingAmount),
		Status:         inv.PaymentStatus.Label(),
	}
	for _, item := range inv.LineItems {
		view.Lines = append(view.Lines, invoiceLine{
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  s.format.Money(item.UnitPrice),
			IncludeVAT: item.IncludeVAT,
		})
	}
	return view
}

func (s *Service) period(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "all dates"
	case from.IsZero():
		return "up to " + s.format.Date(to)
	case to.IsZero():
		return "from " + s.format.Date(from)
	default:
		return s.format.Date(from) + " to " + s.format.Date(to)
	}
}

func accountLabel(tx ledger.Transaction) string {
	switch {
	case tx.AccountFrom != "" && tx.AccountTo != "":
		return tx.AccountFrom + " → " + tx.AccountTo
	case tx.AccountFrom != "":
		return tx.AccountFrom
	default:
		return tx.AccountTo
	}
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
