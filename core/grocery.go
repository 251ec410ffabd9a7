package core

// FoodCategory 是食材所属的食物大类（枚举）。
// 季节性调整只对 Vegetable / Fruit 生效，其余类别为中性。
type FoodCategory string

const (
	CategoryVegetable FoodCategory = "vegetable"
	CategoryFruit     FoodCategory = "fruit"
	CategoryMeat      FoodCategory = "meat"
	CategoryFish      FoodCategory = "fish"
	CategoryDairy     FoodCategory = "dairy"
	CategoryGrain     FoodCategory = "grain"
	CategorySnack     FoodCategory = "snack"
	CategoryBeverage  FoodCategory = "beverage"
	CategoryOther     FoodCategory = "other"
)

// Grocery 是一次排序过程中候选食材的不可变快照。
// 宏量营养素与热量均为每 100 单位（g/ml）的含量，由 catalog 层保证非负。
type Grocery struct {
	ID            int64
	Name          string
	Category      FoodCategory
	ProteinPer100 float64
	CarbsPer100   float64
	FatPer100     float64
	CaloriesPer100 float64
	Unit          string   // g / ml / piece
	GramsPerPiece *float64 // Unit 为 piece 时的单件克重，可缺省
	Approved      bool
	Deleted       bool
	CreatedBy     int64 // 作者用户 ID；未审核物品仅作者本人可见
}

// VisibleTo 判断食材对请求者是否可见：已审核或本人创建，且未删除。
func (g *Grocery) VisibleTo(userID int64) bool {
	if g.Deleted {
		return false
	}
	return g.Approved || g.CreatedBy == userID
}
