package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

const kpiSystemPrompt = "You are a data extractor AI. Convert supplier performance tables into KPI-wise JSON. Always include all 12 months and use null for missing data."

const insightSystemPrompt = "You are a helpful data analyst. Respond quickly and concisely."

const insightPrompt = `You are a senior data analyst. Based on the following table content, generate exactly five concise insights as a raw JSON array of strings.
You must be fully accurate with dates, figures, and trends - no assumptions or extrapolations.

Instructions:
- The table contains monthly data in left-to-right order. Use the exact month labels present in the table when describing trends or numbers.
- Do NOT infer trends beyond the last labeled month, and do NOT confuse column positions or assume patterns.
- Each insight must highlight patterns, trends, gaps, or performance observations strictly from the actual data.
- Use clear, factual, and precise language - avoid vague phrases like "the data shows" or "it can be seen".
- Do NOT include object wrappers or labels like "insight"; only return a plain JSON array of 5 strings.

Only return the JSON array - no markdown, no formatting, no explanations.

Example output:
[
  "80% of suppliers achieved on-time delivery in Q1, but only 60% in Q2, indicating a downward trend.",
  "One supplier reported a significantly higher defect rate, accounting for 45% of all defects.",
  "Turnaround times were consistent for most suppliers, averaging 2.3 hours.",
  "Safety incidents were concentrated in March, with 4 out of 5 occurring that month.",
  "Three suppliers have missing data for production volumes, limiting performance evaluation."
]
`

const summarySystemPrompt = "You are a supply chain analyst. Summarize per-supplier findings into one overall picture. Respond with JSON only."

const summaryPrompt = `Given the per-supplier insights below as JSON, produce a single JSON object with these fields:
- "overview": a short paragraph summarizing overall supplier performance
- "topPerformers": array of supplier names that stand out positively
- "concerns": array of short strings naming cross-supplier risks or gaps
- "dataQuality": a short note on missing or unreliable data

Return ONLY the JSON object - no markdown, no explanations.

Insights:
`

// buildKPIPrompt embeds the target schema (a null-filled 12-month grid per
// alias) and the canonical table text into one extraction request.
func buildKPIPrompt(supplier, tableText string) string {
	nullGrid := make([]string, 0, len(workbook.Months))
	for _, month := range workbook.Months {
		nullGrid = append(nullGrid, fmt.Sprintf("%q: null", month))
	}
	monthsJSON := "{" + strings.Join(nullGrid, ", ") + "}"

	aliases := make([]string, 0, len(KPIAliases))
	for alias := range KPIAliases {
		aliases = append(aliases, alias)
	}

	var schema strings.Builder
	for i, alias := range aliases {
		if i > 0 {
			schema.WriteString(",\n")
		}
		fmt.Fprintf(&schema, "    %q: %s", alias, monthsJSON)
	}

	keyMap, _ := json.Marshal(kpiSourceNames)

	return fmt.Sprintf(`Given the table content below, extract KPIs and convert into this JSON structure:

{
  "supplier": %q,
  "kpis": {
%s
  }
}

IMPORTANT RULES:
1. Use these keys only: %s
2. ALWAYS include all 12 months (Jan through Dec) for every KPI
3. Use null for missing/empty values, NOT 0
4. Convert "null" strings in the table to actual null values
5. Convert spreadsheet errors (#DIV/0!, #N/A, etc.) to null
6. Convert empty cells or blank spaces to null
7. Only use actual numbers for real data values

Table:
%s`, supplier, schema.String(), string(keyMap), tableText)
}

// buildInsightPrompt appends the canonical table text to the fixed insight
// instructions.
func buildInsightPrompt(tableText string) string {
	return insightPrompt + "\n```\n" + tableText + "\n```"
}

// buildSummaryPrompt appends the serialized per-sheet insight map.
func buildSummaryPrompt(insightsJSON []byte) string {
	return summaryPrompt + string(insightsJSON)
}
