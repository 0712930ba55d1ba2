// Package gx describes fixed-function GX shader-stage state decoded from layout materials.
//
// The values mirror the hardware register encodings so they can be copied
// straight out of material records.
package gx

// Hardware limits.
const (
	MaxTevStages    = 16
	MaxTexCoordGens = 8
	MaxIndTexStages = 4
	MaxSwapTables   = 4
	MaxTextureMaps  = 8
	MaxTexMatrices  = 10
	MaxIndTexMatrix = 3
	TexCoordNull    = TexCoordID(0xFF)
	TexMapNull      = TexMapID(0xFF)
	DefaultMaxLOD   = 100
	DefaultMinLOD   = 0
)

type (
	TexGenType    uint8
	TexGenSrc     uint8
	TexGenMatrix  uint8
	TexCoordID    uint8
	TexMapID      uint8
	ColorSrc      uint8
	ColorChannel  uint8
	RasChannel    uint8
	DiffuseFn     uint8
	AttenuationFn uint8
	CC            uint8
	CA            uint8
	TevOp         uint8
	TevBias       uint8
	TevScale      uint8
	Register      uint8
	KonstColorSel uint8
	KonstAlphaSel uint8
	TevColorChan  uint8
	IndTexScale   uint8
	IndTexFormat  uint8
	IndTexBiasSel uint8
	IndTexMtxID   uint8
	IndTexWrap    uint8
	IndTexAlpha   uint8
	CompareType   uint8
	AlphaOp       uint8
	BlendMode     uint8
	BlendFactor   uint8
	LogicOp       uint8
	CullMode      uint8
	WrapMode      uint8
	TexFilter     uint8
)

const (
	ColorSrcReg ColorSrc = 0
	ColorSrcVtx ColorSrc = 1
)

const (
	Color0   ColorChannel = 0
	Alpha0   ColorChannel = 2
	Color0A0 ColorChannel = 4
)

// Rasterized color channels as seen by a TEV stage.
const (
	RasColor0A0  RasChannel = 0
	RasColor1A1  RasChannel = 1
	RasAlphaBump RasChannel = 5
	RasAlphaNorm RasChannel = 6
	RasColorZero RasChannel = 7
	RasColorNull RasChannel = 0xFF
)

const (
	DiffuseNone     DiffuseFn     = 0
	AttenuationNone AttenuationFn = 2
)

const (
	TexCoord0 TexCoordID = 0
	TexMap0   TexMapID   = 0
)

// Color combiner inputs.
const (
	CCCPrev CC = 0
	CCAPrev CC = 1
	CCC0    CC = 2
	CCA0    CC = 3
	CCC1    CC = 4
	CCA1    CC = 5
	CCC2    CC = 6
	CCA2    CC = 7
	CCTexC  CC = 8
	CCTexA  CC = 9
	CCRasC  CC = 10
	CCRasA  CC = 11
	CCOne   CC = 12
	CCHalf  CC = 13
	CCKonst CC = 14
	CCZero  CC = 15
)

// Alpha combiner inputs.
const (
	CAAPrev CA = 0
	CAA0    CA = 1
	CAA1    CA = 2
	CAA2    CA = 3
	CATexA  CA = 4
	CARasA  CA = 5
	CAKonst CA = 6
	CAZero  CA = 7
)

const (
	TevAdd TevOp = 0
	TevSub TevOp = 1
)

const (
	TevBiasZero TevBias  = 0
	TevScale1   TevScale = 0
)

const (
	RegPrev Register = 0
	Reg0    Register = 1
	Reg1    Register = 2
	Reg2    Register = 3
)

const (
	KColor1  KonstColorSel = 0x00
	KAlpha1  KonstAlphaSel = 0x00
	KColorK0 KonstColorSel = 0x0C
	KAlphaK0 KonstAlphaSel = 0x1C
)

const (
	ChanRed   TevColorChan = 0
	ChanGreen TevColorChan = 1
	ChanBlue  TevColorChan = 2
	ChanAlpha TevColorChan = 3
)

const (
	CompareNever   CompareType = 0
	CompareLess    CompareType = 1
	CompareEqual   CompareType = 2
	CompareLEqual  CompareType = 3
	CompareGreater CompareType = 4
	CompareNEqual  CompareType = 5
	CompareGEqual  CompareType = 6
	CompareAlways  CompareType = 7
)

const (
	AlphaOpAnd  AlphaOp = 0
	AlphaOpOr   AlphaOp = 1
	AlphaOpXor  AlphaOp = 2
	AlphaOpXnor AlphaOp = 3
)

const (
	BlendNone     BlendMode = 0
	BlendBlend    BlendMode = 1
	BlendLogic    BlendMode = 2
	BlendSubtract BlendMode = 3
)

const (
	BlendZero        BlendFactor = 0
	BlendOne         BlendFactor = 1
	BlendSrcColor    BlendFactor = 2
	BlendInvSrcColor BlendFactor = 3
	BlendSrcAlpha    BlendFactor = 4
	BlendInvSrcAlpha BlendFactor = 5
	BlendDstAlpha    BlendFactor = 6
	BlendInvDstAlpha BlendFactor = 7
)

const (
	LogicClear LogicOp = 0
	LogicCopy  LogicOp = 3
)

const (
	CullNone  CullMode = 0
	CullFront CullMode = 1
	CullBack  CullMode = 2
	CullAll   CullMode = 3
)

const (
	WrapClamp  WrapMode = 0
	WrapRepeat WrapMode = 1
	WrapMirror WrapMode = 2
)

const (
	FilterNear         TexFilter = 0
	FilterLinear       TexFilter = 1
	FilterNearMipNear  TexFilter = 2
	FilterLinMipNear   TexFilter = 3
	FilterNearMipLin   TexFilter = 4
	FilterLinMipLinear TexFilter = 5
)

// RasChannelID maps the channel byte stored in layout TEV orders to a
// rasterized channel ID.
func RasChannelID(v uint8) RasChannel {
	switch v {
	case 0, 2, 4:
		return RasColor0A0
	case 1, 3, 5:
		return RasColor1A1
	case 7:
		return RasAlphaBump
	case 8:
		return RasAlphaNorm
	default:
		// 6 is COLOR_ZERO; COLOR_NULL also rasterizes as zero
		return RasColorZero
	}
}

// SwapTable maps the R, G, B, A output channels of a TEV stage input.
type SwapTable [4]TevColorChan

// DefaultSwapTables is the table set used when a material carries none.
var DefaultSwapTables = [MaxSwapTables]SwapTable{
	{ChanRed, ChanGreen, ChanBlue, ChanAlpha},
	{ChanRed, ChanRed, ChanRed, ChanAlpha},
	{ChanGreen, ChanGreen, ChanGreen, ChanAlpha},
	{ChanBlue, ChanBlue, ChanBlue, ChanAlpha},
}
