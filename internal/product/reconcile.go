package product

import (
	"fmt"

	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
)

// VariantPlan is the minimal set of writes that turns the persisted variant
// rows of one product into the desired list.
// Apply in order: delete, update, insert.
type VariantPlan struct {
	ToDelete []int64
	ToUpdate []dto.VariantSpec
	ToInsert []dto.VariantSpec
}

func (p *VariantPlan) IsEmpty() bool {
	return len(p.ToDelete) == 0 && len(p.ToUpdate) == 0 && len(p.ToInsert) == 0
}

// PlanVariants diffs persisted variant ids against the desired descriptors.
// A descriptor without id is new. A persisted id missing from the desired
// ids is deleted. A desired id that is not persisted for this product is
// rejected, so a crafted id can never touch another product's variant.
func PlanVariants(persisted []int64, desired []dto.VariantSpec) (*VariantPlan, error) {
	owned := make(map[int64]struct{}, len(persisted))
	for _, id := range persisted {
		owned[id] = struct{}{}
	}

	plan := &VariantPlan{}
	kept := make(map[int64]struct{}, len(desired))
	for _, v := range desired {
		if v.ID == nil {
			plan.ToInsert = append(plan.ToInsert, v)
			continue
		}
		id := *v.ID
		if id <= 0 {
			return nil, ErrInvalidVariantID
		}
		if _, dup := kept[id]; dup {
			return nil, ErrDuplicateVariant.WithData(map[string]interface{}{"ID": id})
		}
		if _, ok := owned[id]; !ok {
			return nil, fmt.Errorf("variant %d: %w", id, ErrForeignVariant)
		}
		kept[id] = struct{}{}
		plan.ToUpdate = append(plan.ToUpdate, v)
	}

	for _, id := range persisted {
		if _, ok := kept[id]; !ok {
			plan.ToDelete = append(plan.ToDelete, id)
		}
	}
	return plan, nil
}
