package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

// storedDoc is the JSON layout of one key. The registry fields live under "doc"
// and are returned to callers as-is; the rest exists for the index.
type storedDoc struct {
	Doc       docDTO      `json:"doc"`
	Location  string      `json:"location,omitempty"`
	GeoVector []float32   `json:"geo_vector,omitempty"`
	Embedding []float32   `json:"embedding,omitempty"`
	Analyzed  analyzedDTO `json:"analyzed"`
	FoundedAt int64       `json:"founded_at,omitempty"`
	IndexedAt int64       `json:"indexed_at"`
}

type docDTO struct {
	ID                 string     `json:"id"`
	CNPJ               string     `json:"cnpj,omitempty"`
	RazaoSocial        string     `json:"razao_social"`
	NomeFantasia       string     `json:"nome_fantasia,omitempty"`
	CNAECodigo         string     `json:"cnae_codigo,omitempty"`
	CNAESecao          string     `json:"cnae_secao,omitempty"`
	CNAEDescricao      string     `json:"cnae_descricao,omitempty"`
	DescricaoAtividade string     `json:"descricao_atividade,omitempty"`
	SituacaoCadastral  string     `json:"situacao_cadastral,omitempty"`
	Porte              string     `json:"porte,omitempty"`
	NaturezaJuridica   string     `json:"natureza_juridica,omitempty"`
	CapitalSocial      float64    `json:"capital_social"`
	DataAbertura       string     `json:"data_abertura,omitempty"`
	Endereco           addressDTO `json:"endereco"`
	Localizacao        *pointDTO  `json:"localizacao,omitempty"`
}

type addressDTO struct {
	Logradouro  string `json:"logradouro,omitempty"`
	Numero      string `json:"numero,omitempty"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
	Cidade      string `json:"cidade,omitempty"`
	UF          string `json:"uf,omitempty"`
	CEP         string `json:"cep,omitempty"`
}

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// analyzedDTO holds analyzer output so index and query share one normalization.
type analyzedDTO struct {
	RazaoSocial        string `json:"razao_social,omitempty"`
	NomeFantasia       string `json:"nome_fantasia,omitempty"`
	CNAEDescricao      string `json:"cnae_descricao,omitempty"`
	DescricaoAtividade string `json:"descricao_atividade,omitempty"`
	SearchText         string `json:"search_text,omitempty"`
	Keywords           string `json:"keywords,omitempty"`
}

func buildStoredDoc(d *business.Document, a *analysis.Analyzer) storedDoc {
	s := storedDoc{
		Doc:       toDTO(d),
		Embedding: d.Embedding,
		Analyzed: analyzedDTO{
			RazaoSocial:        a.Normalize(d.LegalName),
			NomeFantasia:       a.Normalize(d.TradeName),
			CNAEDescricao:      a.Normalize(d.ActivityDescription),
			DescricaoAtividade: a.Normalize(d.Description),
			SearchText:         a.Normalize(d.SearchText()),
			Keywords: strings.Join(a.Keywords(strings.Join([]string{
				d.LegalName, d.TradeName, d.ActivityDescription, d.Description,
			}, " ")), " "),
		},
	}
	if d.Location != nil {
		s.Location = d.Location.LonLat()
		s.GeoVector = d.Location.Vector()
	}
	if !d.FoundedAt.IsZero() {
		s.FoundedAt = d.FoundedAt.Unix()
	}
	if !d.IndexedAt.IsZero() {
		s.IndexedAt = d.IndexedAt.Unix()
	}
	return s
}

func toDTO(d *business.Document) docDTO {
	dto := docDTO{
		ID:                 d.ID,
		CNPJ:               d.TaxID,
		RazaoSocial:        d.LegalName,
		NomeFantasia:       d.TradeName,
		CNAECodigo:         d.ActivityCode,
		CNAESecao:          d.ActivitySection,
		CNAEDescricao:      d.ActivityDescription,
		DescricaoAtividade: d.Description,
		SituacaoCadastral:  string(d.Status),
		Porte:              string(d.Size),
		NaturezaJuridica:   d.LegalNature,
		CapitalSocial:      d.Capital,
		Endereco: addressDTO{
			Logradouro:  d.Address.Street,
			Numero:      d.Address.Number,
			Complemento: d.Address.Complement,
			Bairro:      d.Address.District,
			Cidade:      d.Address.City,
			UF:          d.Address.State,
			CEP:         d.Address.PostalCode,
		},
	}
	if !d.FoundedAt.IsZero() {
		dto.DataAbertura = d.FoundedAt.Format(business.DateLayout)
	}
	if d.Location != nil {
		dto.Localizacao = &pointDTO{Lat: d.Location.Lat(), Lon: d.Location.Lon()}
	}
	return dto
}

func fromDTO(dto *docDTO) (business.Document, error) {
	d := business.Document{
		ID:                  dto.ID,
		TaxID:               dto.CNPJ,
		LegalName:           dto.RazaoSocial,
		TradeName:           dto.NomeFantasia,
		ActivityCode:        dto.CNAECodigo,
		ActivitySection:     dto.CNAESecao,
		ActivityDescription: dto.CNAEDescricao,
		Description:         dto.DescricaoAtividade,
		Status:              business.Status(dto.SituacaoCadastral),
		Size:                business.Size(dto.Porte),
		LegalNature:         dto.NaturezaJuridica,
		Capital:             dto.CapitalSocial,
		Address: business.Address{
			Street:     dto.Endereco.Logradouro,
			Number:     dto.Endereco.Numero,
			Complement: dto.Endereco.Complemento,
			District:   dto.Endereco.Bairro,
			City:       dto.Endereco.Cidade,
			State:      dto.Endereco.UF,
			PostalCode: dto.Endereco.CEP,
		},
	}
	if dto.DataAbertura != "" {
		t, err := time.Parse(business.DateLayout, dto.DataAbertura)
		if err != nil {
			return business.Document{}, fmt.Errorf("parse data_abertura %q: %w", dto.DataAbertura, err)
		}
		d.FoundedAt = t
	}
	if dto.Localizacao != nil {
		p, err := geo.NewPoint(dto.Localizacao.Lat, dto.Localizacao.Lon)
		if err != nil {
			return business.Document{}, fmt.Errorf("stored location: %w", err)
		}
		d.Location = &p
	}
	return d, nil
}

// DecodeDoc parses the "doc" object returned by FT.SEARCH (RETURN $.doc).
func DecodeDoc(raw string) (business.Document, error) {
	var dto docDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return business.Document{}, fmt.Errorf("decode doc: %w", err)
	}
	return fromDTO(&dto)
}
