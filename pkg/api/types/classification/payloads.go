package classification

// DatasetFields is the writable configuration of a dataset.
//
// It is the body of dataset creation and full replacement (PUT).
type DatasetFields struct {
	Name                string `json:"name" validate:"required"`
	LabelStudioURL      string `json:"label_studio_url" validate:"omitempty,url"`
	LabelStudioAPIKey   string `json:"label_studio_api_key"`
	MLBackendURL        string `json:"ml_backend_url" validate:"omitempty,url"`
	BatchSize           int    `json:"batch_size" validate:"gte=0"`
	UncertaintyStrategy string `json:"uncertainty_strategy"`
	MaxEpochs           int    `json:"max_epochs" validate:"gte=0"`
}

// DatasetPatch is a partial update of a dataset. nil fields are left as is.
type DatasetPatch struct {
	Name                *string `json:"name,omitempty" validate:"omitempty,min=1"`
	LabelStudioURL      *string `json:"label_studio_url,omitempty" validate:"omitempty,url"`
	LabelStudioAPIKey   *string `json:"label_studio_api_key,omitempty"`
	MLBackendURL        *string `json:"ml_backend_url,omitempty" validate:"omitempty,url"`
	BatchSize           *int    `json:"batch_size,omitempty" validate:"omitempty,gte=0"`
	UncertaintyStrategy *string `json:"uncertainty_strategy,omitempty"`
	MaxEpochs           *int    `json:"max_epochs,omitempty" validate:"omitempty,gte=0"`
}

// Apply overwrites fields of ds which are set in the patch.
func (p DatasetPatch) Apply(ds *Dataset) {
	if p.Name != nil {
		ds.Name = *p.Name
	}
	if p.LabelStudioURL != nil {
		ds.LabelStudioURL = *p.LabelStudioURL
	}
	if p.LabelStudioAPIKey != nil {
		ds.LabelStudioAPIKey = *p.LabelStudioAPIKey
	}
	if p.MLBackendURL != nil {
		ds.MLBackendURL = *p.MLBackendURL
	}
	if p.BatchSize != nil {
		ds.BatchSize = *p.BatchSize
	}
	if p.UncertaintyStrategy != nil {
		ds.UncertaintyStrategy = *p.UncertaintyStrategy
	}
	if p.MaxEpochs != nil {
		ds.MaxEpochs = *p.MaxEpochs
	}
}

// DatapointReference creates a datapoint from a file already known by the server.
type DatapointReference struct {
	File    string `json:"file" validate:"required"`
	Dataset int    `json:"dataset" validate:"gt=0"`
	Label   *int   `json:"label,omitempty"`
}

// DatapointFields is the body of full replacement (PUT) of a datapoint.
type DatapointFields struct {
	File    string `json:"file" validate:"required"`
	Dataset int    `json:"dataset" validate:"gt=0"`
	Label   *int   `json:"label"`
}

// DatapointPatch changes the label of a datapoint.
//
// Label designates a label by id, ClassIndex by its class index in the
// dataset of the datapoint. Set at most one of them.
type DatapointPatch struct {
	Label      *int `json:"label,omitempty" validate:"excluded_with=ClassIndex"`
	ClassIndex *int `json:"class_index,omitempty" validate:"omitempty,gte=0"`
}

type LabelFields struct {
	ClassIndex *int   `json:"class_index" validate:"required,gte=0"`
	ClassLabel string `json:"class_label" validate:"required"`
	Dataset    int    `json:"dataset" validate:"gt=0"`
}

type LabelPatch struct {
	ClassIndex *int    `json:"class_index,omitempty" validate:"omitempty,gte=0"`
	ClassLabel *string `json:"class_label,omitempty" validate:"omitempty,min=1"`
}

// PredictionCreate is the body of prediction creation.
//
// The predicted label is designated either by PredictedClassIndex (resolved
// in the dataset of the datapoint) or by PredictedLabel (label id).
type PredictionCreate struct {
	Datapoint           int      `json:"datapoint" validate:"gt=0"`
	PredictedClassIndex *int     `json:"predicted_class_index,omitempty" validate:"required_without=PredictedLabel,excluded_with=PredictedLabel,omitempty,gte=0"`
	PredictedLabel      *int     `json:"predicted_label,omitempty"`
	Confidence          *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	ModelVersion        *int     `json:"model_version,omitempty" validate:"omitempty,gte=0"`
}

// PredictionFields is the body of full replacement (PUT) of a prediction.
type PredictionFields struct {
	Datapoint      int      `json:"datapoint" validate:"gt=0"`
	PredictedLabel int      `json:"predicted_label" validate:"gt=0"`
	Confidence     *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	ModelVersion   int      `json:"model_version" validate:"gte=0"`
}

type ActiveLearningStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthToken struct {
	Token string `json:"token"`
}
