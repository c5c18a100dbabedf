package model

type ColumnType string

const (
	ColumnInteger ColumnType = "integer"
	ColumnText    ColumnType = "text"
	ColumnNumeric ColumnType = "numeric"
)

type ColumnGroup string

const (
	GroupIdentity    ColumnGroup = "identity"
	GroupDescriptive ColumnGroup = "descriptive"
	GroupValuation   ColumnGroup = "valuation"
	GroupShared      ColumnGroup = "shared"
	GroupHitting     ColumnGroup = "hitting"
	GroupPitching    ColumnGroup = "pitching"
)

type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Indexed  bool
	Group    ColumnGroup
}

// PlayerColumns players 表的列定义, 顺序与迁移脚本一致
var PlayerColumns = []Column{
	{Name: "id", Type: ColumnInteger, Indexed: true, Group: GroupIdentity},
	{Name: "name", Type: ColumnText, Nullable: true, Indexed: true, Group: GroupDescriptive},
	{Name: "team", Type: ColumnText, Nullable: true, Group: GroupDescriptive},
	{Name: "status", Type: ColumnText, Nullable: true, Group: GroupDescriptive},
	{Name: "year", Type: ColumnNumeric, Nullable: true, Group: GroupDescriptive},

	{Name: "war", Type: ColumnNumeric, Nullable: true, Group: GroupValuation},
	{Name: "base_value", Type: ColumnNumeric, Nullable: true, Group: GroupValuation},
	{Name: "contract_value", Type: ColumnNumeric, Nullable: true, Group: GroupValuation},
	{Name: "surplus_value", Type: ColumnNumeric, Nullable: true, Group: GroupValuation},

	{Name: "age_bat", Type: ColumnNumeric, Nullable: true, Group: GroupShared},
	{Name: "age_pit", Type: ColumnNumeric, Nullable: true, Group: GroupShared},
	{Name: "bb_pct_bat", Type: ColumnNumeric, Nullable: true, Group: GroupShared},
	{Name: "bb_pct_pit", Type: ColumnNumeric, Nullable: true, Group: GroupShared},
	{Name: "k_pct_bat", Type: ColumnNumeric, Nullable: true, Group: GroupShared},
	{Name: "k_pct_pit", Type: ColumnNumeric, Nullable: true, Group: GroupShared},

	{Name: "avg", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "obp", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "slg", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "woba", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "wrc_plus", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "ev", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "off", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "bsr", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},
	{Name: "def_value", Type: ColumnNumeric, Nullable: true, Group: GroupHitting},

	{Name: "fip", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "siera", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "gb_pct", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "fb_pct", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "stuff_plus", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "location_plus", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "pitching_plus", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
	{Name: "fbv", Type: ColumnNumeric, Nullable: true, Group: GroupPitching},
}

var columnIndex = func() map[string]Column {
	m := make(map[string]Column, len(PlayerColumns))
	for _, c := range PlayerColumns {
		m[c.Name] = c
	}
	return m
}()

func ColumnByName(name string) (Column, bool) {
	c, ok := columnIndex[name]
	return c, ok
}

// IsPatchable id 以外的已知列都允许部分更新
func IsPatchable(name string) bool {
	c, ok := columnIndex[name]
	return ok && c.Group != GroupIdentity
}

func ColumnsInGroup(g ColumnGroup) []string {
	var out []string
	for _, c := range PlayerColumns {
		if c.Group == g {
			out = append(out, c.Name)
		}
	}
	return out
}

func ColumnNames() []string {
	out := make([]string, len(PlayerColumns))
	for i, c := range PlayerColumns {
		out[i] = c.Name
	}
	return out
}
