package business

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

// Record is a raw establishment as exported by the registry (JSON, Portuguese field names).
type Record struct {
	ExternalID         string        `json:"_id,omitempty"`
	CNPJ               string        `json:"cnpj"`
	RazaoSocial        string        `json:"razao_social"`
	NomeFantasia       string        `json:"nome_fantasia,omitempty"`
	CNAECodigo         string        `json:"cnae_codigo,omitempty"`
	CNAESecao          string        `json:"cnae_secao,omitempty"`
	CNAEDescricao      string        `json:"cnae_descricao,omitempty"`
	DescricaoAtividade string        `json:"descricao_atividade,omitempty"`
	SituacaoCadastral  string        `json:"situacao_cadastral,omitempty"`
	Porte              string        `json:"porte,omitempty"`
	NaturezaJuridica   string        `json:"natureza_juridica,omitempty"`
	CapitalSocial      float64       `json:"capital_social,omitempty"`
	DataAbertura       string        `json:"data_abertura,omitempty"`
	Endereco           RecordAddress `json:"endereco"`
	Localizacao        *RecordPoint  `json:"localizacao,omitempty"`
}

// RecordAddress is the raw address block. Both "cidade" and "municipio" are accepted.
type RecordAddress struct {
	Logradouro  string `json:"logradouro,omitempty"`
	Numero      string `json:"numero,omitempty"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
	Cidade      string `json:"cidade,omitempty"`
	Municipio   string `json:"municipio,omitempty"`
	UF          string `json:"uf,omitempty"`
	CEP         string `json:"cep,omitempty"`
}

// RecordPoint is the raw geo point; either coordinate may be missing.
type RecordPoint struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Normalize maps a raw record into a Document without embedding and timestamp.
// Coordinates that are missing, out of range or the (0,0) placeholder leave Location nil.
func Normalize(r *Record) (Document, error) {
	id := strings.TrimSpace(r.ExternalID)
	if id == "" {
		id = digitsOnly(r.CNPJ)
	}
	if id == "" {
		return Document{}, fmt.Errorf("record has neither _id nor cnpj: %w", domain.ErrInvalidDocument)
	}

	status, err := ParseStatus(r.SituacaoCadastral)
	if err != nil {
		return Document{}, fmt.Errorf("record %s: %w", id, err)
	}
	size, err := ParseSize(r.Porte)
	if err != nil {
		return Document{}, fmt.Errorf("record %s: %w", id, err)
	}

	var founded time.Time
	if s := strings.TrimSpace(r.DataAbertura); s != "" {
		founded, err = time.Parse(DateLayout, s)
		if err != nil {
			return Document{}, fmt.Errorf("record %s: data_abertura %q: %w", id, s, domain.ErrInvalidDocument)
		}
	}

	city := r.Endereco.Cidade
	if city == "" {
		city = r.Endereco.Municipio
	}

	doc := Document{
		ID:                  id,
		TaxID:               strings.TrimSpace(r.CNPJ),
		LegalName:           strings.TrimSpace(r.RazaoSocial),
		TradeName:           strings.TrimSpace(r.NomeFantasia),
		ActivityCode:        strings.TrimSpace(r.CNAECodigo),
		ActivitySection:     strings.TrimSpace(r.CNAESecao),
		ActivityDescription: strings.TrimSpace(r.CNAEDescricao),
		Description:         strings.TrimSpace(r.DescricaoAtividade),
		Status:              status,
		Size:                size,
		LegalNature:         strings.TrimSpace(r.NaturezaJuridica),
		Capital:             r.CapitalSocial,
		FoundedAt:           founded,
		Address: Address{
			Street:     r.Endereco.Logradouro,
			Number:     r.Endereco.Numero,
			Complement: r.Endereco.Complemento,
			District:   r.Endereco.Bairro,
			City:       strings.TrimSpace(city),
			State:      strings.ToUpper(strings.TrimSpace(r.Endereco.UF)),
			PostalCode: r.Endereco.CEP,
		},
		Location: locationOf(r.Localizacao),
	}

	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func locationOf(p *RecordPoint) *geo.Point {
	if p == nil || p.Lat == nil || p.Lon == nil {
		return nil
	}
	pt, err := geo.NewPoint(*p.Lat, *p.Lon)
	if err != nil || pt.IsPlaceholder() {
		return nil
	}
	return &pt
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
