package catalog

import "github.com/salescoach/salescoach/internal/model"

const (
	defaultAddonMarker       = "토핑"
	defaultMaxCompanionPrice = 10.0
)

// DefaultRules returns the store's standard analysis and planning rules.
func DefaultRules() Rules {
	return Rules{
		ExcludedNames: []string{
			"참이슬 프레쉬 360ml",
			"처음처럼 360ml",
			"진로이즈백 360ml",
			"막걸리",
			"앙코르 맥주 S 330ml",
			"앙코르 맥주 L 640ml",
			"앙코르 생맥주 250ml",
			"앙코르 생맥주 500ml",
			"하이네켄 생맥주 250ml",
			"콜라 330ml",
			"스프라이트 330ml",
			"소다 330ml",
			"봉봉 238ml",
			"쌕쌕 238ml",
			"쿨피스 250ml",
			"밀키스 250ml",
			"이과두주 100ml",
			"이과두주 500ml",
			"보건주 125ml",
			"보건주 520ml",
			"노주교 500ml",
		},
		SoftDrinks: []string{
			"콜라 330ml",
			"스프라이트 330ml",
			"소다 330ml",
			"밀키스 250ml",
			"쿨피스 250ml",
			"봉봉 238ml",
			"쌕쌕 238ml",
		},
		FriedKeywords:    []string{"탕수육", "깐풍기", "유린기", "치킨", "튀김"},
		AlwaysCompatible: []string{"해물육교자"},
	}
}

// Default returns the store's standard menu catalog.
func Default() *Catalog {
	categories := []model.Category{
		{
			Name: "음식 메뉴 (Main Dishes)",
			Items: []model.Item{
				{ID: "f1", Name: "짜장면", Price: 7, UnitCost: model.Cost(1.42)},
				{ID: "f2", Name: "짬뽕", Price: 7, UnitCost: model.Cost(2.24)},
				{ID: "f3", Name: "짬뽕밥", Price: 8, UnitCost: model.Cost(2.34)},
				{ID: "f4", Name: "백짬뽕", Price: 7, UnitCost: model.Cost(2.13)},
				{ID: "f5", Name: "백짬뽕밥", Price: 8, UnitCost: model.Cost(2.08)},
				{ID: "f6", Name: "볶음짬뽕", Price: 9, UnitCost: model.Cost(2.94)},
				{ID: "f7", Name: "고추짜장", Price: 9, UnitCost: model.Cost(1.57)},
				{ID: "f8", Name: "고추짬뽕", Price: 10, UnitCost: model.Cost(2.51)},
				{ID: "f9", Name: "고추짬뽕밥", Price: 12, UnitCost: model.Cost(2.61)},
				{ID: "f10", Name: "짜장밥", Price: 5, UnitCost: model.Cost(1.67)},
				{ID: "f11", Name: "잡채밥", Price: 10, UnitCost: model.Cost(3.35)},
				{ID: "f12", Name: "야채볶음밥", Price: 5, UnitCost: model.Cost(1.69)},
				{ID: "f13", Name: "소고기볶음밥", Price: 7, UnitCost: model.Cost(2.36)},
				{ID: "f14", Name: "마파두부", Price: 12, UnitCost: model.Cost(2.24)},
				{ID: "f15", Name: "마파두부덮밥", Price: 9, UnitCost: model.Cost(1.72)},
				{ID: "f16", Name: "깐풍기", Price: 15, UnitCost: model.Cost(2.97)},
				{ID: "f17", Name: "고추유린기", Price: 15, UnitCost: model.Cost(3.71)},
				{ID: "f18", Name: "쟁반짜장", Price: 18, UnitCost: model.Cost(4.38)},
				{ID: "f19", Name: "돌짜장", Price: 18, UnitCost: model.Cost(5.32)},
				{ID: "f20", Name: "해물육교자", Price: 5.5, UnitCost: model.Cost(2.42)},
			},
		},
		{
			Name: "탕수육 (Tangsuyuk)",
			Items: []model.Item{
				{ID: "t1", Name: "탕수육 S", Price: 12, UnitCost: model.Cost(2.70)},
				{ID: "t2", Name: "탕수육 M", Price: 15, UnitCost: model.Cost(3.23)},
				{ID: "t3", Name: "탕수육 L", Price: 18, UnitCost: model.Cost(4.50)},
			},
		},
		{
			Name: "토핑 (Add-ons)",
			Items: []model.Item{
				{ID: "a1", Name: "토핑 해시브라운", Price: 2, UnitCost: model.Cost(0.28)},
				{ID: "a2", Name: "토핑 계란프라이", Price: 1, UnitCost: model.Cost(0.141)},
				{ID: "a3", Name: "토핑 슬라이스치즈", Price: 1, UnitCost: model.Cost(0.29)},
			},
		},
		{
			Name: "음료 및 주류 (Beverages)",
			Items: []model.Item{
				{ID: "b1", Name: "참이슬 프레쉬 360ml", Price: 5},
				{ID: "b2", Name: "처음처럼 360ml", Price: 5},
				{ID: "b3", Name: "진로이즈백 360ml", Price: 5},
				{ID: "b4", Name: "막걸리", Price: 6},
				{ID: "b5", Name: "앙코르 맥주 S 330ml", Price: 2.5},
				{ID: "b6", Name: "앙코르 맥주 L 640ml", Price: 4.5},
				{ID: "b7", Name: "앙코르 생맥주 250ml", Price: 2},
				{ID: "b8", Name: "앙코르 생맥주 500ml", Price: 3},
				{ID: "b9", Name: "하이네켄 생맥주 250ml", Price: 2.5},
				{ID: "b10", Name: "콜라 330ml", Price: 1},
				{ID: "b11", Name: "스프라이트 330ml", Price: 1},
				{ID: "b12", Name: "소다 330ml", Price: 1},
				{ID: "b13", Name: "봉봉 238ml", Price: 2},
				{ID: "b14", Name: "쌕쌕 238ml", Price: 2},
				{ID: "b15", Name: "쿨피스 250ml", Price: 2},
				{ID: "b16", Name: "밀키스 250ml", Price: 2},
			},
		},
		{
			Name: "고량주 (Liquors)",
			Items: []model.Item{
				{ID: "l1", Name: "이과두주 100ml", Price: 4},
				{ID: "l2", Name: "이과두주 500ml", Price: 8},
				{ID: "l3", Name: "보건주 125ml", Price: 6},
				{ID: "l4", Name: "보건주 520ml", Price: 18},
				{ID: "l5", Name: "노주교 500ml", Price: 60},
			},
		},
	}

	c, err := New(categories, DefaultRules())
	if err != nil {
		// The default catalog is static data; a construction error here is
		// a programming mistake.
		panic(err)
	}
	return c
}
