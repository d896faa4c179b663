package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calindra/solana-twitter/internal/engine"
	"github.com/Calindra/solana-twitter/internal/ir"
)

// submit signs instruction with the --keypair signer, executes it against
// the configured database, and renders the receipt. A failed receipt is
// returned as an ExitFailure after it has been printed.
func submit(cmd *cobra.Command, opts *RootOptions, instruction string, args ir.Object) (ir.Receipt, error) {
	kp, err := opts.signer()
	if err != nil {
		return ir.Receipt{}, err
	}

	ctx := cmdContext(cmd)
	eng, st, err := opts.openEngine(ctx)
	if err != nil {
		return ir.Receipt{}, err
	}
	defer st.Close()

	tx, err := engine.Sign(kp, engine.NewMessage(eng.ProgramID(), kp, instruction, args, eng.NewRequestToken()))
	if err != nil {
		return ir.Receipt{}, WrapExitError(ExitCommandError, "failed to sign transaction", err)
	}

	f := opts.formatter(cmd)
	f.VerboseLog("submitting %s as %s", instruction, kp.Public)

	receipt, err := eng.Execute(ctx, tx)
	if err != nil {
		var re *engine.RuntimeError
		if errors.As(err, &re) {
			_ = f.Error(string(re.Code), re.Message, re.Details)
			return ir.Receipt{}, WrapExitError(ExitFailure, "transaction rejected", err)
		}
		return ir.Receipt{}, WrapExitError(ExitCommandError, "failed to execute transaction", err)
	}

	if err := renderReceipt(f, receipt); err != nil {
		return receipt, err
	}
	if !receipt.Succeeded() {
		return receipt, WrapExitError(ExitFailure, "instruction failed", engine.ReceiptError(receipt))
	}
	return receipt, nil
}

// renderReceipt writes a receipt. JSON output carries the transaction id
// at the top level and reports failed instructions as errors.
func renderReceipt(f *OutputFormatter, r ir.Receipt) error {
	if f.Format != "json" {
		writeReceipt(f.Writer, r)
		return nil
	}
	resp := CLIResponse{Status: "ok", Data: r, TxID: r.ID}
	if !r.Succeeded() {
		resp.Status = "error"
		resp.Error = &CLIError{Code: r.Outcome, Message: engine.ReceiptError(r).Error()}
	}
	return json.NewEncoder(f.Writer).Encode(resp)
}

// writeReceipt prints a receipt as aligned key/value lines.
func writeReceipt(w io.Writer, r ir.Receipt) {
	writeField(w, "tx", r.ID)
	writeField(w, "seq", strconv.FormatInt(r.Seq, 10))
	writeField(w, "outcome", r.Outcome)
	if !r.Succeeded() {
		writeField(w, "error", engine.ReceiptError(r).Error())
		return
	}
	for _, k := range r.Result.SortedKeys() {
		writeField(w, k, valueText(r.Result[k]))
	}
}

func writeField(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%-13s %s\n", key, value)
}

// valueText renders scalars bare and anything else as canonical JSON.
func valueText(v ir.Value) string {
	switch val := v.(type) {
	case ir.String:
		return string(val)
	case ir.Int:
		return strconv.FormatInt(int64(val), 10)
	case ir.Bool:
		return strconv.FormatBool(bool(val))
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
