package floral

// CatalogEntry - 키, 화면 라벨, 프롬프트에 들어갈 설명
type CatalogEntry struct {
	Value       string
	Label       string
	Description string
}

// Catalog - 순서가 있는 옵션 목록. 모르는 키는 첫 항목으로 대체
type Catalog []CatalogEntry

// Lookup returns the entry for key, or the first entry when key is unknown.
func (c Catalog) Lookup(key string) CatalogEntry {
	for _, e := range c {
		if e.Value == key {
			return e
		}
	}
	return c[0]
}

// Has reports whether key is a known entry.
func (c Catalog) Has(key string) bool {
	for _, e := range c {
		if e.Value == key {
			return true
		}
	}
	return false
}

// Scenes - 촬영 장소
var Scenes = Catalog{
	{"cafe", "网红小咖啡店", "a trendy aesthetic cafe, sunlit wooden tables, minimalist coffee shop vibe."},
	{"dessert_shop", "精致小甜品店", "a boutique dessert shop with pastel colors, glass displays of cute cakes."},
	{"restaurant", "高级西餐厅", "a luxury western restaurant, warm romantic ambient lighting, white tablecloth."},
	{"bar", "时尚清吧", "a chic modern lounge bar with artistic cocktails and sophisticated urban nightlife lighting."},
	{"chinese_vip", "中餐厅包房", "a luxurious private VIP room in a high-end Chinese restaurant, large round table with lazy susan, elegant traditional decor."},
	{"western_vip", "西餐厅包房", "an exclusive private room in a fine-dining Western restaurant, long candlelit table, premium crystal glasses and silverware."},
	{"ktv_vip", "KTV包房", "a high-end luxury KTV private suite, stylish modern sofa, ambient LED decorative lighting, sleek marble table."},
	{"bar_vip", "高档酒吧包房", "a premium private booth of a luxury bar, dim sophisticated lighting, marble tabletop, high-end spirit bottles in background."},
	{"flower_shop_zone", "花店拍照区", "a beautifully curated photo zone inside a boutique flower shop, surrounded by buckets of fresh blooms and artistic floral displays."},
	{"car_interior", "家庭小汽车内", "inside a high-end small family car, soft leather seats, looking out of the window with warm natural light, the flowers are on the seat or held by the model."},
	{"southeast_asian", "东南亚美食餐厅", "a tropical-themed restaurant with lush greenery and warm exotic wood decor."},
	{"fusion", "精致融合餐厅", "a refined minimalist fusion restaurant with modern artistic decor."},
	{"garden", "轻奢花园", "an outdoor luxury garden terrace, natural daylight, soft bokeh of blooming plants."},
	{"school", "校园美景", "a beautiful modern university campus with clean architectural backgrounds."},
	{"qilou", "梧州骑楼城街拍", "historic Qilou street, vintage Lingnan architecture, nostalgic southern Chinese urban vibe."},
}

// Styles - 의상 스타일
var Styles = Catalog{
	{"balletcore", "芭蕾气质风", "wearing a ballet-inspired outfit, soft pink ribbon, tulle skirt, graceful youthful look."},
	{"coquette", "蝴蝶结甜心", "wearing a coquette style dress with bows and lace, ultra-feminine 18-year-old girl aesthetic."},
	{"varsity", "美式复古校园", "wearing a vintage American varsity jacket and a mini pleated skirt."},
	{"tech_girl", "清冷机能少女", "wearing a cool tech-chic minimalist outfit, silver accessories."},
	{"cottagecore", "南法田园风", "wearing a vintage floral milkmaid dress, romantic countryside aesthetic."},
	{"pure_minimalist", "极简白开水风", "pure 'Plain Water' look, clean white aesthetic, natural youthful skin."},
	{"preppy", "美式学院风", "preppy academy style, blazer and school-girl skirt."},
	{"dopamine", "多巴胺穿搭", "bright dopamine color outfit, vibrant tones."},
	{"mori_girl", "森系少女感", "Mori Girl style, earth-toned linen fabrics, soft ethereal look."},
	{"relaxed", "氛围感松弛派", "effortless relaxed chic, oversized knitwear, cozy vibe."},
	{"y2k", "Y2K 甜酷风", "trendy Y2K aesthetic, Gen Z energy."},
	{"soft_girl", "奶系少女感", "sweet soft girl look, pastel colors."},
	{"elegant", "优雅礼服", "a sophisticated silk slip dress or elegant evening gown."},
	{"vintage", "复古胶片感", "90s vintage film aesthetic, retro color grading."},
	{"amateur", "纯欲素人感", "authentic daily photo look, natural pose, simple casual clothing."},
}

// Compositions - 인물 구성
var Compositions = Catalog{
	{string(CompositionSingle), "个人出镜", "One stunningly beautiful 16-18 year old Chinese girl with a radiant youthful smile and flawless skin."},
	{string(CompositionDoubleBFF), "双人闺蜜", "Two beautiful 17-year-old Chinese girls, best friends, celebrating together."},
	{string(CompositionCouple), "甜蜜情侣", "A handsome young man and a stunning 18-year-old Chinese girl as a happy couple."},
	{string(CompositionMultipleBFF), "多人闺蜜", "A lively group of 3-4 beautiful 16-18 year old Chinese girls celebrating."},
	{string(CompositionNone), "仅拍摄花卉", "NO PEOPLE. PROFESSIONAL STILL LIFE PHOTOGRAPHY. The focus is entirely on the flowers."},
}

// OptionItem - 화면에 노출되는 선택지
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Desc  string `json:"desc,omitempty"`
	Badge string `json:"badge,omitempty"`
}

// SizeRange - 크기 슬라이더 설정
type SizeRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Options - GET /api/floral/options 응답
type Options struct {
	Models       []OptionItem `json:"models"`
	GiftTypes    []OptionItem `json:"giftTypes"`
	Scenes       []OptionItem `json:"scenes"`
	Styles       []OptionItem `json:"styles"`
	Compositions []OptionItem `json:"compositions"`
	Size         SizeRange    `json:"size"`
	Defaults     Defaults     `json:"defaults"`
}

// Defaults - 폼 초기값
type Defaults struct {
	Model       string `json:"model"`
	GiftType    string `json:"giftType"`
	Size        int    `json:"size"`
	Scene       string `json:"scene"`
	Style       string `json:"style"`
	Composition string `json:"composition"`
}

var (
	modelOptions = []OptionItem{
		{Value: ModelStandard, Label: "标准快拍", Icon: "⚡", Desc: "基于 Gemini 2.5，生成速度极快", Badge: "推荐"},
		{Value: ModelArtistic, Label: "艺术精修", Icon: "🎨", Desc: "强化构图与色彩，呈现电影质感", Badge: "免费"},
	}
	giftTypeOptions = []OptionItem{
		{Value: string(GiftBouquet), Label: "经典花束", Icon: "💐", Desc: "传统手持/怀抱式"},
		{Value: string(GiftHugBucket), Label: "抱抱桶", Icon: "🪣", Desc: "餐桌摆放/优雅合影"},
		{Value: string(GiftBox), Label: "精美礼盒", Icon: "🎁", Desc: "开启惊喜时刻"},
	}
	compositionMeta = map[string][2]string{
		string(CompositionSingle):      {"👤", "精致单人写真"},
		string(CompositionDoubleBFF):   {"👭", "好姐妹庆生"},
		string(CompositionCouple):      {"👩‍❤️‍👨", "浪漫二人世界"},
		string(CompositionMultipleBFF): {"👯‍♀️", "姐妹团大聚会"},
		string(CompositionNone):        {"📸", "纯静物/无模特出镜"},
	}
)

// BuildOptions - 화면용 옵션 카탈로그 생성
func BuildOptions() Options {
	opts := Options{
		Models:    append([]OptionItem(nil), modelOptions...),
		GiftTypes: append([]OptionItem(nil), giftTypeOptions...),
		Size:      SizeRange{Min: MinSizeCm, Max: MaxSizeCm, Default: DefaultSizeCm},
		Defaults: Defaults{
			Model:       ModelStandard,
			GiftType:    string(GiftBouquet),
			Size:        DefaultSizeCm,
			Scene:       "restaurant",
			Style:       "elegant",
			Composition: string(CompositionSingle),
		},
	}
	for _, s := range Scenes {
		opts.Scenes = append(opts.Scenes, OptionItem{Value: s.Value, Label: s.Label})
	}
	for _, s := range Styles {
		opts.Styles = append(opts.Styles, OptionItem{Value: s.Value, Label: s.Label})
	}
	for _, c := range Compositions {
		meta := compositionMeta[c.Value]
		opts.Compositions = append(opts.Compositions, OptionItem{Value: c.Value, Label: c.Label, Icon: meta[0], Desc: meta[1]})
	}
	return opts
}
