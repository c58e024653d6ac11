// Package catalog holds the fixed product list of the storefront.
package catalog

import (
	"github.com/safar/maison-store/internal/models"
)

const imageBase = "https://images.unsplash.com/"

var products = []models.Product{
	{ID: 1, Name: "SOVEREIGN CLASSIC", Price: models.PriceFromInt(12500), Image: imageBase + "photo-1547996160-81dfa63595aa?auto=format&fit=crop&w=1200&q=80", Description: "Swiss automatic movement with 42mm rose gold case", Category: models.CategoryWatch},
	{ID: 2, Name: "IMPERIAL CHRONO", Price: models.PriceFromInt(18900), Image: imageBase + "photo-1522312346375-d1a52e2b99b3?auto=format&fit=crop&w=1200&q=80", Description: "Limited edition chronograph with titanium construction", Category: models.CategoryWatch},
	{ID: 3, Name: "DYNASTY ELITE", Price: models.PriceFromInt(25000), Image: imageBase + "photo-1547996160-81dfa63595aa?auto=format&fit=crop&w=1200&q=80", Description: "Perpetual calendar with moon phase complications", Category: models.CategoryWatch},
	{ID: 4, Name: "PLATINUM SIGNET", Price: models.PriceFromInt(8500), Image: imageBase + "photo-1611591437281-4608be1af65f?auto=format&fit=crop&w=1200&q=80", Description: "Handcrafted platinum signet ring with family crest", Category: models.CategoryRing},
	{ID: 5, Name: "ETERNITY BAND", Price: models.PriceFromInt(12000), Image: imageBase + "photo-1603569283847-aa295f0d016a?auto=format&fit=crop&w=1200&q=80", Description: "Eternity band with channel-set diamonds", Category: models.CategoryRing},
	{ID: 6, Name: "SILK SATIN TIE", Price: models.PriceFromInt(295), Image: imageBase + "photo-1591047139829-d91aecb6caea?auto=format&fit=crop&w=1200&q=80", Description: "Hand-rolled Italian silk tie with hidden stitch", Category: models.CategoryTie},
	{ID: 7, Name: "CASHMERE BOW TIE", Price: models.PriceFromInt(395), Image: imageBase + "photo-1621351183012-e2f797f4eb78?auto=format&fit=crop&w=1200&q=80", Description: "Self-tie cashmere bow tie in midnight blue", Category: models.CategoryTie},
	{ID: 8, Name: "OBSIDIAN CUFFLINKS", Price: models.PriceFromInt(1950), Image: imageBase + "photo-1588444645088-6a0669c4cb05?auto=format&fit=crop&w=1200&q=80", Description: "18k gold cufflinks with obsidian inlay", Category: models.CategoryCufflinks},
	{ID: 9, Name: "ENAMEL CUFFLINKS", Price: models.PriceFromInt(1250), Image: imageBase + "photo-1606761568499-6d2451b23c66?auto=format&fit=crop&w=1200&q=80", Description: "Sterling silver with royal blue enamel", Category: models.CategoryCufflinks},
	{ID: 10, Name: "GOLD LINK BRACELET", Price: models.PriceFromInt(5200), Image: imageBase + "photo-1599643478518-a784e5dc4c8f?auto=format&fit=crop&w=1200&q=80", Description: "18k gold Cuban link bracelet with secure clasp", Category: models.CategoryBracelet},
	{ID: 11, Name: "DIAMOND TENNIS", Price: models.PriceFromInt(8500), Image: imageBase + "photo-1611591439146-c95010f4f1e9?auto=format&fit=crop&w=1200&q=80", Description: "Platinum tennis bracelet with round brilliant diamonds", Category: models.CategoryBracelet},
	{ID: 12, Name: "FOUNTAIN PEN", Price: models.PriceFromInt(3200), Image: imageBase + "photo-1583485088034-697b5bc54ccd?auto=format&fit=crop&w=1200&q=80", Description: "18k gold nib fountain pen with ebonite body", Category: models.CategoryPen},
	{ID: 13, Name: "ROLLERBALL SET", Price: models.PriceFromInt(2800), Image: imageBase + "photo-1583485088329-0ef69df39d9e?auto=format&fit=crop&w=1200&q=80", Description: "Matte black rollerball pen with palladium details", Category: models.CategoryPen},
}

type OffsetPage struct {
	Items      []models.Product `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func All() []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

func ByID(id int64) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// ByCategory filters in catalog order. The empty category matches everything.
func ByCategory(c models.Category) []models.Product {
	if c == "" {
		return All()
	}

	var out []models.Product
	for _, p := range products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

func List(c models.Category, page, pageSize int) *OffsetPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	filtered := ByCategory(c)
	total := len(filtered)

	// Compare before multiplying so a huge page cannot overflow the offset.
	offset := total
	if page-1 <= total/pageSize {
		offset = min((page-1)*pageSize, total)
	}
	end := total
	if pageSize < total-offset {
		end = offset + pageSize
	}

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	items := filtered[offset:end]
	if items == nil {
		items = []models.Product{}
	}

	return &OffsetPage{
		Items:      items,
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
