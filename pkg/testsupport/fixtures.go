// Package testsupport holds shared fixtures for the engine's tests: small
// HTKK templates and rule tables, plus helpers to parse them fatally.
package testsupport

import (
	"testing"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/schema/parser"
)

// VATFormID names the VAT declaration fixture; the 01 prefix puts it in the
// GTGT family.
const VATFormID = "01/GTGT"

// CorporateFormID names the corporate declaration fixture (TNDN family).
const CorporateFormID = "03/TNDN"

// PersonalFormID names the personal income fixture (TNCN family).
const PersonalFormID = "02/TNCN"

// VATTemplate is a trimmed VAT declaration: taxpayer identity cells plus the
// revenue/VAT pairs at 5% and 10% and the aggregate cells.
const VATTemplate = `<Form Version="2.5.1">
  <Section Title="Thông tin chung">
    <Cells>
      <Cell CellID="mst" Path="TTinChung/MST" Controltype="0" MaxLen="14"/>
      <Cell CellID="ten_nnt" Path="TTinChung/TenNNT" Controltype="0" MaxLen="200"/>
      <Cell CellID="ky_khai" Path="TTinChung/KyKhai" Controltype="14"/>
    </Cells>
  </Section>
  <Section Title="Chỉ tiêu kê khai">
    <Cells>
      <Cell CellID="ct24" Path="CTieu/ct24" Controltype="16" MinValue="0"/>
      <Cell CellID="ct28" Path="CTieu/ct28" Controltype="16" MinValue="0"/>
      <Cell CellID="ct30" Path="CTieu/ct30" Controltype="16" MinValue="0"/>
      <Cell CellID="ct31" Path="CTieu/ct31" Controltype="16" MinValue="0"/>
      <Cell CellID="ct32" Path="CTieu/ct32" Controltype="16" MinValue="0"/>
      <Cell CellID="ct33" Path="CTieu/ct33" Controltype="16" MinValue="0"/>
      <Cell CellID="ct35" Path="CTieu/ct35" Controltype="16"/>
      <Cell CellID="ct36" Path="CTieu/ct36" Controltype="16"/>
      <Cell CellID="ghi_chu" Controltype="0" MaxLen="500"/>
    </Cells>
  </Section>
</Form>`

// CorporateTemplate covers the corporate family cells the domain pass reads.
const CorporateTemplate = `<Form Version="1.1.0">
  <Section Title="Kết quả kinh doanh">
    <Cells>
      <Cell CellID="revenue" Path="KQKD/DoanhThu" Controltype="16" MinValue="0"/>
      <Cell CellID="expenses" Path="KQKD/ChiPhi" Controltype="16" MinValue="0"/>
      <Cell CellID="profit" Path="KQKD/LoiNhuan" Controltype="16"/>
      <Cell CellID="corporate_tax" Path="KQKD/ThueTNDN" Controltype="16"/>
    </Cells>
  </Section>
</Form>`

// PersonalTemplate declares the single income cell the personal computation
// reads.
const PersonalTemplate = `<Form Version="1.0.2">
  <Section Title="Thu nhập">
    <Cells>
      <Cell CellID="annual_income" Path="TNhap/TongThuNhap" Controltype="16" MinValue="0"/>
    </Cells>
  </Section>
</Form>`

// RuleTable wires the VAT aggregates: ct35 derives from ct31 and ct33, ct36
// from ct35 and the deductible ct24 (declared as a decrease).
const RuleTable = `<MapMCT>
  <Map ID="01/GTGT">
    <Item CellID="ct31" MCT="31" DieuChinhTang="1" Caption="Thuế GTGT 5%"/>
    <Item CellID="ct33" MCT="33" DieuChinhTang="1" Caption="Thuế GTGT 10%"/>
    <Item CellID="ct24" MCT="24" DieuChinhTang="0" Caption="Thuế GTGT được khấu trừ"/>
    <Item CellID="ct35" MCT="35" DieuChinhTang="1" Depends="ct31,ct33" Caption="Tổng thuế đầu ra"/>
    <Item CellID="ct36" MCT="36" DieuChinhTang="1" Depends="ct35,ct24" Caption="Thuế phải nộp"/>
  </Map>
</MapMCT>`

// CyclicRuleTable declares two cells that depend on each other.
const CyclicRuleTable = `<MapMCT>
  <Map ID="01/GTGT">
    <Item CellID="ctA" MCT="90" DieuChinhTang="1" Depends="ctB"/>
    <Item CellID="ctB" MCT="91" DieuChinhTang="1" Depends="ctA"/>
  </Map>
</MapMCT>`

// MustSchema parses a template fixture or fails the test.
func MustSchema(t *testing.T, formID, template string) *schema.FormSchema {
	t.Helper()

	s, err := parser.ParseTemplate(formID, []byte(template))
	if err != nil {
		t.Fatalf("parse template %s: %v", formID, err)
	}
	return s
}

// MustRules resolves rules from a table fixture or fails the test.
func MustRules(t *testing.T, table, formID string) []rules.CalculationRule {
	t.Helper()

	out, err := rules.Resolve([]byte(table), formID)
	if err != nil {
		t.Fatalf("resolve rules %s: %v", formID, err)
	}
	return out
}
