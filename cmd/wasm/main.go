//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"ragqa/internal/adapter/chunker"
	"ragqa/internal/adapter/embedding"
	"ragqa/internal/adapter/index"
	"ragqa/internal/adapter/memstore"
	"ragqa/internal/domain"
	"ragqa/internal/usecase"
)

var (
	ix  *index.EmbeddingIndex
	chk *chunker.RecursiveChunker
)

func init() {
	ix = index.NewEmbeddingIndex("rag_collection", embedding.NewHashEmbedder(384), memstore.NewMemoryStore())
	chk, _ = chunker.NewRecursiveChunker(1000, 200)
}

// The browser build has no model access: it ingests text, retrieves
// context and returns the prompt for the page to send wherever it likes.
func main() {
	c := make(chan struct{})

	js.Global().Set("ragIngest", js.FuncOf(ingestContent))
	js.Global().Set("ragQuery", js.FuncOf(queryContent))
	js.Global().Set("ragClear", js.FuncOf(clearIndex))
	js.Global().Set("ragInfo", js.FuncOf(getInfo))

	<-c
}

func ingestContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: ragIngest(filename, content)")
	}

	filename := args[0].String()
	content := args[1].String()

	chunks, err := chk.Chunk(content, domain.NewSourceMetadata(filename))
	if err != nil {
		return makeError("chunking failed: " + err.Error())
	}

	if err := ix.Insert(context.Background(), chunks); err != nil {
		return makeError("indexing failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success":  true,
		"chunks":   len(chunks),
		"filename": filename,
	})
}

func queryContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: ragQuery(question, [topK])")
	}

	question := args[0].String()
	topK := usecase.DefaultTopK
	if len(args) > 1 {
		topK = args[1].Int()
	}

	results, err := ix.Search(context.Background(), question, topK)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}

	if len(results) == 0 {
		return makeResult(map[string]interface{}{
			"question": question,
			"answer":   domain.NotFoundAnswer,
			"sources":  []domain.Source{},
			"context":  "",
		})
	}

	ctxText := usecase.FormatContext(results)
	return makeResult(map[string]interface{}{
		"question": question,
		"sources":  usecase.Sources(results),
		"context":  ctxText,
		"prompt":   usecase.BuildPrompt(question, ctxText),
	})
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	if err := ix.Clear(context.Background()); err != nil {
		return makeError("clear failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getInfo(this js.Value, args []js.Value) interface{} {
	info := ix.Describe(context.Background())
	return makeResult(map[string]interface{}{
		"status": info.Status,
		"count":  info.Count,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
