package insights

import (
	"fmt"
	"regexp"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

var (
	weekLabel     = regexp.MustCompile(`(?i)^Semana\s*\d+`)
	genericVendor = regexp.MustCompile(`(?i)EMPRESA\s+|PROVEEDOR\s+`)
	catchAll      = regexp.MustCompile(`(?i)otros|others|uncategorized`)
)

// checkChart rejects chart data with no labels or with labels the service
// only produces as sample data.
func checkChart(chart model.ChartType, data model.ChartData) error {
	if len(data.Labels) == 0 {
		return fmt.Errorf("%s chart: %w", chart, common.ErrNoData)
	}

	placeholder := false
	switch chart {
	case model.ChartExpense:
		placeholder = anyMatch(weekLabel, data.Labels)
	case model.ChartSupplier:
		placeholder = anyMatch(genericVendor, data.Labels)
	case model.ChartCategory:
		placeholder = len(data.Labels) == 1 && catchAll.MatchString(data.Labels[0])
	}

	if placeholder {
		return fmt.Errorf("%s chart: %w", chart, common.ErrPlaceholderData)
	}
	return nil
}

func anyMatch(re *regexp.Regexp, labels []string) bool {
	for _, l := range labels {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}
