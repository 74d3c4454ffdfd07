package action

// StringID names a user-facing message. Clients localise by id.
type StringID string

const (
	StrNone StringID = ""

	StrCantRaiseLandHere       StringID = "CANT_RAISE_LAND_HERE"
	StrCantLowerLandHere       StringID = "CANT_LOWER_LAND_HERE"
	StrCantChangeLandHere      StringID = "CANT_CHANGE_LAND_HERE"
	StrCantChangeLandRights    StringID = "CANT_CHANGE_LAND_RIGHTS"
	StrCantRaiseWaterHere      StringID = "CANT_RAISE_WATER_HERE"
	StrCantLowerWaterHere      StringID = "CANT_LOWER_WATER_HERE"
	StrCantChangeWaterHere     StringID = "CANT_CHANGE_WATER_HERE"
	StrCantBuildFootpathHere   StringID = "CANT_BUILD_FOOTPATH_HERE"
	StrCantBuildThisHere       StringID = "CANT_BUILD_THIS_HERE"
	StrOffEdgeOfMap            StringID = "OFF_EDGE_OF_MAP"
	StrTooLow                  StringID = "TOO_LOW"
	StrTooHigh                 StringID = "TOO_HIGH"
	StrLandNotOwnedByPark      StringID = "LAND_NOT_OWNED_BY_PARK"
	StrForbiddenByLocalAuth    StringID = "FORBIDDEN_BY_LOCAL_AUTHORITY"
	StrTileElementLimit        StringID = "TILE_ELEMENT_LIMIT_REACHED"
	StrSupportsCantBeExtended  StringID = "SUPPORTS_CANT_BE_EXTENDED"
	StrRemoveLevelCrossing     StringID = "REMOVE_LEVEL_CROSSING_FIRST"
	StrLandSlopeUnsuitable     StringID = "LAND_SLOPE_UNSUITABLE"
	StrCantBuildUnderwater     StringID = "CANT_BUILD_THIS_UNDERWATER"
	StrPartlyUnderwater        StringID = "CANT_BUILD_PARTLY_ABOVE_AND_BELOW_WATER"
	StrRaiseOrLowerLandFirst   StringID = "RAISE_OR_LOWER_LAND_FIRST"
	StrNotEnoughCash           StringID = "NOT_ENOUGH_CASH_REQUIRES"
	StrObjectInTheWay          StringID = "X_IN_THE_WAY"
	StrRideNeedsWater          StringID = "CAN_ONLY_BUILD_THIS_ON_WATER"
	StrInvalidDirection        StringID = "INVALID_DIRECTION"
	StrInvalidSelection        StringID = "INVALID_SELECTION"
	StrInvalidOwnershipSetting StringID = "INVALID_OWNERSHIP_SETTING"
	StrInvalidPathType         StringID = "INVALID_PATH_TYPE"
	StrLandNotForSale          StringID = "LAND_NOT_FOR_SALE"
	StrRightsNotForSale        StringID = "CONSTRUCTION_RIGHTS_NOT_FOR_SALE"
	StrNotInEditorMode         StringID = "NOT_IN_EDITOR_MODE"
	StrGamePaused              StringID = "CONSTRUCTION_NOT_POSSIBLE_WHILE_GAME_IS_PAUSED"
	StrAlreadyBuilt            StringID = "ALREADY_BUILT"
	StrCantDoThis              StringID = "CANT_DO_THIS"
	StrUnknownCommand          StringID = "UNKNOWN_COMMAND"
)
