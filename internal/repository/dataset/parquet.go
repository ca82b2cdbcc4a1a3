package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

const parquetReadBatch = 1000

// recordSetter stores one column value into a record.
type recordSetter func(r *business.Record, v parquet.Value)

// parquetColumns maps leaf column names to setters. Columns may be flat
// ("cidade") or nested under "endereco" / "localizacao"; the leaf name decides.
var parquetColumns = map[string]recordSetter{
	"_id":                 func(r *business.Record, v parquet.Value) { r.ExternalID = v.String() },
	"cnpj":                func(r *business.Record, v parquet.Value) { r.CNPJ = v.String() },
	"razao_social":        func(r *business.Record, v parquet.Value) { r.RazaoSocial = v.String() },
	"nome_fantasia":       func(r *business.Record, v parquet.Value) { r.NomeFantasia = v.String() },
	"cnae_codigo":         func(r *business.Record, v parquet.Value) { r.CNAECodigo = v.String() },
	"cnae_secao":          func(r *business.Record, v parquet.Value) { r.CNAESecao = v.String() },
	"cnae_descricao":      func(r *business.Record, v parquet.Value) { r.CNAEDescricao = v.String() },
	"descricao_atividade": func(r *business.Record, v parquet.Value) { r.DescricaoAtividade = v.String() },
	"situacao_cadastral":  func(r *business.Record, v parquet.Value) { r.SituacaoCadastral = v.String() },
	"porte":               func(r *business.Record, v parquet.Value) { r.Porte = v.String() },
	"natureza_juridica":   func(r *business.Record, v parquet.Value) { r.NaturezaJuridica = v.String() },
	"data_abertura":       func(r *business.Record, v parquet.Value) { r.DataAbertura = v.String() },
	"capital_social": func(r *business.Record, v parquet.Value) {
		if f, ok := numeric(v); ok {
			r.CapitalSocial = f
		}
	},
	"logradouro":  func(r *business.Record, v parquet.Value) { r.Endereco.Logradouro = v.String() },
	"numero":      func(r *business.Record, v parquet.Value) { r.Endereco.Numero = v.String() },
	"complemento": func(r *business.Record, v parquet.Value) { r.Endereco.Complemento = v.String() },
	"bairro":      func(r *business.Record, v parquet.Value) { r.Endereco.Bairro = v.String() },
	"cidade":      func(r *business.Record, v parquet.Value) { r.Endereco.Cidade = v.String() },
	"municipio":   func(r *business.Record, v parquet.Value) { r.Endereco.Municipio = v.String() },
	"uf":          func(r *business.Record, v parquet.Value) { r.Endereco.UF = v.String() },
	"cep":         func(r *business.Record, v parquet.Value) { r.Endereco.CEP = v.String() },
	"lat": func(r *business.Record, v parquet.Value) {
		if f, ok := numeric(v); ok {
			point(r).Lat = &f
		}
	},
	"lon": func(r *business.Record, v parquet.Value) {
		if f, ok := numeric(v); ok {
			point(r).Lon = &f
		}
	},
}

// ReadParquet reads records from a Parquet file. Unknown columns are ignored.
func ReadParquet(path string) ([]business.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	setters := resolveColumns(pf.Schema())
	records := make([]business.Record, 0, pf.NumRows())
	for _, rg := range pf.RowGroups() {
		if records, err = readRowGroup(rg, setters, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// resolveColumns finds the setter of each leaf column index.
func resolveColumns(schema *parquet.Schema) map[int]recordSetter {
	setters := make(map[int]recordSetter)
	for i, path := range schema.Columns() {
		if len(path) == 0 {
			continue
		}
		if set, ok := parquetColumns[path[len(path)-1]]; ok {
			setters[i] = set
		}
	}
	return setters
}

func readRowGroup(rg parquet.RowGroup, setters map[int]recordSetter, out []business.Record) ([]business.Record, error) {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, parquetReadBatch)

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			var rec business.Record
			for _, v := range buf[i] {
				if v.IsNull() {
					continue
				}
				if set, ok := setters[v.Column()]; ok {
					set(&rec, v)
				}
			}
			out = append(out, rec)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("read rows: %w", readErr)
		}
	}
}

func numeric(v parquet.Value) (float64, bool) {
	switch v.Kind() {
	case parquet.Double:
		return v.Double(), true
	case parquet.Float:
		return float64(v.Float()), true
	case parquet.Int32:
		return float64(v.Int32()), true
	case parquet.Int64:
		return float64(v.Int64()), true
	default:
		return 0, false
	}
}

func point(r *business.Record) *business.RecordPoint {
	if r.Localizacao == nil {
		r.Localizacao = &business.RecordPoint{}
	}
	return r.Localizacao
}
