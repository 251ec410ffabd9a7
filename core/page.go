package core

// RankedItem 是最终对外输出的单条推荐：食材快照 + 分数 + 可读解释。
// 每次请求临时构建，不落盘。
type RankedItem struct {
	Grocery     *Grocery
	Score       float64
	Explanation string
}

// PagedResult 是 GetRecommended 的返回值：一页排序结果与全量总数。
type PagedResult struct {
	Items    []RankedItem
	Total    int
	Page     int
	PageSize int
}

// EmptyPage 构造一个空结果页（未知用户/空候选池时的降级返回）。
func EmptyPage(page, pageSize int) *PagedResult {
	return &PagedResult{
		Items:    []RankedItem{},
		Total:    0,
		Page:     page,
		PageSize: pageSize,
	}
}
