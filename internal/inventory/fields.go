package inventory

// Payload field names of the inventory source
const (
	FieldCode           = "code"
	FieldName           = "name"
	FieldPrice          = "kabuka"             // 株価
	FieldRequiredShares = "kabusu"             // 必要株数
	FieldDividend       = "haito"              // 配当
	FieldMaxCarryCost   = "riron_gyaku"        // 最大逆日歩 (理論値)
	FieldRestriction    = "recent_gyaku_kisei" // 規制
	FieldMarginLabel    = "taisyaku"           // 貸借区分
	FieldBenefit        = "yutai"              // 優待内容
)
