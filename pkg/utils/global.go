package utils

//Team1ID is the id results use for players matched by the first uniform color
const Team1ID = 1

//Team2ID is the id results use for players matched by the second uniform color
const Team2ID = 2

//ResultsExtension is the extension of the per video detection records
const ResultsExtension = ".json"

//TempVideoExtension is the container the annotated video is written in before conversion
const TempVideoExtension = "avi"

//TempVideoCodec is the fourcc used for the temporary annotated video
const TempVideoCodec = "XVID"

//DefaultFrameWidth is the width every frame is resized to before detection
const DefaultFrameWidth = 640

//DefaultFrameHeight is the height every frame is resized to before detection
const DefaultFrameHeight = 360
