package contract

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/jsoncol"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{"계약ID", "구분", "상태", "물품명", "가격", "장소", "태그", "조회수", "등록일시"}

// ExportContracts: 条件に合う契約を EUC-KR の CSV で書き出す（韓国語版 Excel 向け）
// EUC-KR にない文字は置換してそのまま出力する
func (s *Service) ExportContracts(ctx context.Context, f ContractFilter, w io.Writer) error {
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(korean.EUCKR.NewEncoder()))
	cw := csv.NewWriter(tw)
	cw.UseCRLF = true

	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	p := Page{Limit: MaxPageLimit}
	for {
		rows, total, err := s.store.List(ctx, f, p)
		if err != nil {
			return err
		}
		for _, r := range rows {
			tags, err := jsoncol.DecodeStrings(r.ItemHash)
			if err != nil {
				return apperr.ErrSerialization(msgDecodeHashFailed, err)
			}
			rec := []string{
				strconv.FormatInt(r.ContractID, 10),
				string(r.Category),
				string(r.Status),
				r.ItemName,
				strconv.FormatInt(r.Price, 10),
				r.ItemPlace,
				strings.Join(tags, "|"),
				strconv.FormatInt(r.Click, 10),
				r.CreatedAt.Format(exportTimeLayout),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		p.Offset += p.Limit
		if len(rows) == 0 || int64(p.Offset) >= total {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return tw.Close()
}
