package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"section8-underwriter/internal/adapters/sheet"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/contracts"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/port/usecases_port"
	"section8-underwriter/internal/core/underwriting"
)

const (
	maxJSONBody      = 8 << 20
	maxUploadBody    = 32 << 20
	sheetFileField   = "file"
	sheetParamsField = "params"
	defaultSheetName = "offers"
)

type UnderwriteHandlers struct {
	batchUC  usecases_port.UnderwriteBatchPort
	quoteUC  usecases_port.QuoteRentPort
	defaults domain.UnderwritingParams
}

// NewUnderwriteHandlers - конструктор обработчиков, defaults - политика из конфигурации
func NewUnderwriteHandlers(
	batchUC usecases_port.UnderwriteBatchPort,
	quoteUC usecases_port.QuoteRentPort,
	defaults domain.UnderwritingParams,
) *UnderwriteHandlers {
	return &UnderwriteHandlers{
		batchUC:  batchUC,
		quoteUC:  quoteUC,
		defaults: defaults,
	}
}

func (h *UnderwriteHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUnderwrite - обработчик для POST /api/v1/underwrite
func (h *UnderwriteHandlers) HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleUnderwrite"})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		WriteJSONError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
		return
	}

	// 1. Проверяем тело по контракту
	if err := contracts.Validate(contracts.UnderwriteRequest, contracts.VersionV1, body); err != nil {
		logger.Warn("Request failed schema validation", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var reqDTO UnderwriteRequestDTO
	if err := json.Unmarshal(body, &reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	// 2. Собираем параметры андеррайтинга
	params, err := h.resolveParams(reqDTO.Params)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	inputs := toDomainInputs(reqDTO.Properties)
	logger.Info("Received underwrite request", port.Fields{"properties": len(inputs)})

	// 3. Вызываем Use Case
	result, err := h.batchUC.Execute(r.Context(), inputs, params, nil)
	if err != nil {
		h.writeBatchError(w, logger, err)
		return
	}

	w.Header().Set("X-Run-ID", result.RunID.String())
	RespondWithJSON(w, http.StatusOK, toUnderwriteResponse(result, queryBool(r, "good_only")))
}

// HandleUnderwriteSheet - обработчик для POST /api/v1/underwrite/sheet.
// Принимает CSV/XLSX в поле "file" и возвращает офферный лист
func (h *UnderwriteHandlers) HandleUnderwriteSheet(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleUnderwriteSheet"})

	outFormat := sheet.FormatXLSX
	if f := strings.ToLower(r.URL.Query().Get("format")); f != "" {
		switch sheet.Format(f) {
		case sheet.FormatXLSX, sheet.FormatCSV:
			outFormat = sheet.Format(f)
		default:
			WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported output format %q", f))
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile(sheetFileField)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Field 'file' is required")
		return
	}
	defer file.Close()

	inFormat, err := sheet.FormatFromFilename(header.Filename)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	inputs, err := sheet.ReadProperties(file, inFormat)
	if err != nil {
		logger.Warn("Could not read uploaded sheet", port.Fields{"file": header.Filename, "error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Could not read sheet: %v", err))
		return
	}
	if len(inputs) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "Sheet has no properties")
		return
	}

	params, err := h.resolveParams(json.RawMessage(r.FormValue(sheetParamsField)))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Received sheet underwrite request", port.Fields{
		"file":       header.Filename,
		"properties": len(inputs),
		"format":     string(outFormat),
	})

	result, err := h.batchUC.Execute(r.Context(), inputs, params, nil)
	if err != nil {
		h.writeBatchError(w, logger, err)
		return
	}

	deals := result.Deals
	if queryBool(r, "good_only") {
		deals = result.GoodDeals()
	}

	// Пишем в буфер, чтобы при ошибке еще можно было ответить JSON
	var buf bytes.Buffer
	if err := sheet.Write(&buf, outFormat, deals); err != nil {
		logger.Error("Failed to render offer sheet", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to render offer sheet")
		return
	}

	w.Header().Set("Content-Type", sheet.ContentType(outFormat))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, defaultSheetName, outFormat))
	w.Header().Set("X-Run-ID", result.RunID.String())
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Failed to send offer sheet", err, nil)
	}
}

// HandleQuoteRent - обработчик для GET /api/v1/rent?zip=&beds=&sqft=
func (h *UnderwriteHandlers) HandleQuoteRent(w http.ResponseWriter, r *http.Request) {
	zip := underwriting.NormalizeZip(r.URL.Query().Get("zip"))
	if zip == "" {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'zip' is required")
		return
	}

	beds, err := queryIntOrDefault(r, "beds", domain.DefaultBedrooms)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sqft, err := queryIntOrDefault(r, "sqft", 0)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := h.defaults
	if policy := r.URL.Query().Get("policy"); policy != "" {
		switch policy {
		case "110":
			params.Use110PaymentStandard = true
		case "100":
			params.Use110PaymentStandard = false
		default:
			WriteJSONError(w, http.StatusBadRequest, "Query parameter 'policy' must be 100 or 110")
			return
		}
	}

	record := h.quoteUC.Execute(r.Context(), zip, beds, sqft, params)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"zip":      zip,
		"bedrooms": domain.ClampBedrooms(domain.EffectiveBedrooms(beds)),
		"rent": RentResponseDTO{
			Source:   record.Source,
			Amount:   record.Amount,
			Fallback: record.Fallback,
		},
	})
}

// resolveParams накладывает переопределения из запроса на политику по умолчанию
func (h *UnderwriteHandlers) resolveParams(raw json.RawMessage) (domain.UnderwritingParams, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return h.defaults, nil
	}

	var override domain.ParamsOverride
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&override); err != nil {
		return domain.UnderwritingParams{}, fmt.Errorf("invalid params: %v", err)
	}

	params, err := override.Apply(h.defaults)
	if err != nil {
		return domain.UnderwritingParams{}, fmt.Errorf("invalid params: %v", err)
	}
	return params, nil
}

func (h *UnderwriteHandlers) writeBatchError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	if errors.Is(err, domain.ErrInvalidParams) {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error("Use case execution failed", err, nil)
	WriteJSONError(w, http.StatusInternalServerError, "Failed to underwrite properties")
}
